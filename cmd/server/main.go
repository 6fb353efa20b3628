package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/config"
	"github.com/example/supplysetu/internal/database"
	"github.com/example/supplysetu/internal/logger"
	"github.com/example/supplysetu/internal/metrics"
	"github.com/example/supplysetu/internal/middleware"
	"github.com/example/supplysetu/internal/routes"
	"github.com/example/supplysetu/internal/scheduler"
	"github.com/example/supplysetu/internal/server"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "supplysetu",
		Short: "SupplySetu marketplace backend",
		RunE:  runServe,
	}
	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API and background jobs",
		RunE:  runServe,
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update the postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer log.Sync()

			conn, err := database.Connect(cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			if err := database.Migrate(conn, log); err != nil {
				return err
			}
			return store.Seed(cmd.Context(), store.NewGorm(conn))
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	if err := store.Seed(ctx, st); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}

	verifier, err := newVerifier(ctx, cfg, log)
	if err != nil {
		return err
	}

	var telegram *services.TelegramService
	if cfg.TelegramBotToken != "" {
		telegram = services.NewTelegramService(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramAdminChat, log)
	}

	m := metrics.New(cfg.MetricsPrefix)
	notifier := services.NewNotifier(st, telegram, log)
	limiter := middleware.NewPhoneRateLimiter(cfg.LoginRatePerMin, cfg.LoginBurst)

	app := server.New(routes.Dependencies{
		Store:    st,
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Notifier: notifier,
		Advisor:  services.NewMockAdvisor(cfg.FreshnessDelay),
		Images:   services.NewImageStore(cfg.UploadDir, cfg.PublicBaseURL, int64(cfg.UploadMaxBytes)),
		Verifier: verifier,
		Limiter:  limiter,
	})

	jobs := scheduler.New(st, notifier, limiter, m, log)
	if err := jobs.Start(cfg.SchedulerSpec); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.AppPort), zap.String("store", cfg.StoreDriver))
		errCh <- app.Listen(":" + cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		<-jobs.Stop().Done()
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	<-jobs.Stop().Done()
	notifier.Wait()
	return nil
}

func openStore(cfg *config.Config, log *zap.Logger) (*store.Store, error) {
	if cfg.StoreDriver != config.StorePostgres {
		return store.NewMemory(), nil
	}
	conn, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(conn, log); err != nil {
		return nil, err
	}
	return store.NewGorm(conn), nil
}

// newVerifier picks the login code verifier. Strict mode keeps codes in
// Redis when REDIS_ADDR is set and in memory otherwise.
func newVerifier(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.CodeVerifier, error) {
	if cfg.OTPMode != config.OTPStrict {
		return services.AcceptAnyVerifier{}, nil
	}

	var codes services.CodeStore = services.NewMemoryCodeStore()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		codes = services.NewRedisCodeStore(client)
	}
	return services.NewOTPVerifier(codes, services.LogCodeSender{Log: log}, cfg.OTPTTL), nil
}

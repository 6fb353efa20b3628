package logger

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/supplysetu/internal/store"
	"github.com/example/supplysetu/internal/validation"
)

// RequestIDKey is the header carrying the request id.
const RequestIDKey = "X-Request-ID"

const localsKey = "logger"

// New builds a JSON logger for production and a console logger otherwise.
// Unknown levels fall back to info.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level.SetLevel(lvl)

	return cfg.Build()
}

// Middleware assigns a request id, stores a request-scoped logger in the
// context and writes one access log line per request.
func Middleware(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)

		log := base.With(zap.String("request_id", requestID))
		c.Locals(localsKey, log)

		err := c.Next()

		fields := []zapcore.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", StatusOf(c, err)),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			log.Warn("HTTP request failed", fields...)
		} else {
			log.Info("HTTP request completed", fields...)
		}
		return err
	}
}

// FromContext returns the request-scoped logger, or the global one when the
// middleware did not run.
func FromContext(c *fiber.Ctx) *zap.Logger {
	if log, ok := c.Locals(localsKey).(*zap.Logger); ok {
		return log
	}
	return zap.L()
}

// StatusOf returns the status the response will carry once err, if any, has
// gone through the error handler.
func StatusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	var ve *validation.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

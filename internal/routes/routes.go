package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/config"
	"github.com/example/supplysetu/internal/handlers"
	"github.com/example/supplysetu/internal/metrics"
	"github.com/example/supplysetu/internal/middleware"
	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
)

// Dependencies are the shared services the HTTP handlers are built from.
type Dependencies struct {
	Store    *store.Store
	Config   *config.Config
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	Notifier *services.Notifier
	Advisor  services.Advisor
	Images   *services.ImageStore
	Verifier services.CodeVerifier
	Limiter  *middleware.PhoneRateLimiter
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Dependencies) {
	cfg := deps.Config

	authHandler := handlers.NewAuthHandler(deps.Store, cfg, deps.Verifier, deps.Metrics)
	userHandler := handlers.NewUserHandler(deps.Store)
	profileHandler := handlers.NewProfileHandler(deps.Store)
	catalogHandler := handlers.NewCatalogHandler(deps.Store)
	productHandler := handlers.NewProductHandler(deps.Store, deps.Advisor)
	orderHandler := handlers.NewOrderHandler(deps.Store, deps.Notifier, deps.Metrics)
	deliveryHandler := handlers.NewDeliveryHandler(deps.Store, deps.Notifier, deps.Metrics)
	complaintHandler := handlers.NewComplaintHandler(deps.Store, deps.Notifier, deps.Metrics)
	subscriptionHandler := handlers.NewSubscriptionHandler(deps.Store)
	notificationHandler := handlers.NewNotificationHandler(deps.Store)
	recommendationHandler := handlers.NewRecommendationHandler(deps.Store, deps.Advisor)
	uploadHandler := handlers.NewUploadHandler(deps.Images, deps.Advisor)
	dashboardHandler := handlers.NewDashboardHandler(deps.Store)
	healthHandler := handlers.NewHealthHandler(cfg.StoreDriver)

	authRequired := middleware.AuthMiddleware(cfg.JWTSecret)
	supplierOnly := middleware.RequireRole(authHandler.CurrentRole, models.RoleSupplier)

	app.Get("/health", healthHandler.Health)
	app.Get("/metrics", deps.Metrics.Handler())
	app.Static("/uploads", deps.Images.Dir())

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", deps.Limiter.Handler(), authHandler.Login)
	auth.Post("/verify-otp", deps.Limiter.Handler(), authHandler.VerifyOTP)
	auth.Get("/me", authRequired, authHandler.Me)

	users := api.Group("/users")
	users.Get("/:id", userHandler.GetUser)
	users.Patch("/:id", userHandler.UpdateUser)

	// Onboarding profiles
	vendors := api.Group("/vendors")
	vendors.Post("/", profileHandler.CreateVendor)
	vendors.Get("/user/:userId", profileHandler.GetVendorByUser)
	vendors.Get("/:id", profileHandler.GetVendor)
	vendors.Patch("/:id", profileHandler.UpdateVendor)

	suppliers := api.Group("/suppliers")
	suppliers.Post("/", profileHandler.CreateSupplier)
	suppliers.Get("/", profileHandler.ListSuppliers)
	suppliers.Get("/user/:userId", profileHandler.GetSupplierByUser)
	suppliers.Get("/:id", profileHandler.GetSupplier)
	suppliers.Patch("/:id", profileHandler.UpdateSupplier)
	suppliers.Get("/:id/dashboard", authRequired, supplierOnly, dashboardHandler.SupplierStats)

	// Catalog
	api.Get("/stall-types", catalogHandler.ListStallTypes)

	bundles := api.Group("/bundles")
	bundles.Post("/", catalogHandler.CreateBundle)
	bundles.Get("/stall-type/:stallTypeId", catalogHandler.ListBundlesByStallType)
	bundles.Get("/:id", catalogHandler.GetBundle)

	products := api.Group("/products")
	productHandler.RegisterProductRoutes(products)

	// Orders
	orders := api.Group("/orders")
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/vendor/:vendorId", orderHandler.ListByVendor)
	orders.Get("/supplier/:supplierId/export", authRequired, supplierOnly, orderHandler.ExportSupplierOrders)
	orders.Get("/supplier/:supplierId", orderHandler.ListBySupplier)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Patch("/:id", orderHandler.UpdateOrder)

	// Delivery calendar
	deliveries := api.Group("/deliveries")
	deliveries.Post("/", deliveryHandler.CreateDelivery)
	deliveries.Get("/order/:orderId", deliveryHandler.ListByOrder)
	deliveries.Patch("/:id", deliveryHandler.UpdateDelivery)

	pauses := api.Group("/delivery-pauses")
	pauses.Post("/", deliveryHandler.CreatePause)
	pauses.Get("/vendor/:vendorId/active", deliveryHandler.GetActivePause)
	pauses.Patch("/:id", deliveryHandler.UpdatePause)

	// Complaint center
	complaints := api.Group("/complaints")
	complaints.Post("/", complaintHandler.CreateComplaint)
	complaints.Get("/vendor/:vendorId", complaintHandler.ListByVendor)
	complaints.Get("/:id", complaintHandler.GetComplaint)
	complaints.Patch("/:id", complaintHandler.UpdateComplaint)

	subscriptions := api.Group("/subscriptions")
	subscriptions.Post("/", subscriptionHandler.CreateSubscription)
	subscriptions.Get("/vendor/:vendorId", subscriptionHandler.ListByVendor)
	subscriptions.Get("/:id", subscriptionHandler.GetSubscription)
	subscriptions.Patch("/:id", subscriptionHandler.UpdateSubscription)

	notifications := api.Group("/notifications")
	notifications.Get("/user/:userId", notificationHandler.ListByUser)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)

	// Advisory service
	recommendations := api.Group("/recommendations")
	recommendations.Get("/bundles", recommendationHandler.Bundles)
	recommendations.Post("/freshness", recommendationHandler.Freshness)

	api.Post("/uploads/images", uploadHandler.UploadImage)
}

package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/zerowastechef/zwc-backend/internal/config"
	"github.com/zerowastechef/zwc-backend/internal/handlers"
	"github.com/zerowastechef/zwc-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	donationHandler *handlers.DonationHandler,
	nearbyHandler *handlers.NearbyHandler,
	profileHandler *handlers.ProfileHandler,
	statsHandler *handlers.StatsHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// All donation and profile routes require a valid token; lifecycle role
	// guards run in the service layer.
	protected := api.Group("", middleware.JWTProtected(cfg))

	protected.Get("/profile", profileHandler.Get)
	protected.Put("/profile", profileHandler.Update)
	protected.Put("/profile/location", profileHandler.UpdateLocation)

	protected.Post("/donations", donationHandler.Create)
	protected.Post("/donations/image", donationHandler.UploadImage)
	protected.Get("/donations/mine", donationHandler.Dashboard)
	protected.Post("/donations/:id/collect", donationHandler.Claim)
	protected.Post("/donations/:id/deliver", donationHandler.Deliver)
	protected.Delete("/donations/:id", donationHandler.Delete)

	protected.Get("/nearby", nearbyHandler.List)

	// Admin panel (token + admin role)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/stats", statsHandler.AdminStats)
}

// Package server assembles the fiber application and its route table.
package server

import (
	"time"

	"vendorapi/internal/database"
	"vendorapi/internal/handlers"
	"vendorapi/internal/middleware"
	"vendorapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Options carries everything NewApp wires into the routes.
type Options struct {
	Logger         zerolog.Logger
	ProductService *services.ProductService
	AuthService    *services.AuthService
	DB             *gorm.DB // nil when running on the in-memory store
	EventsEnabled  bool
}

// NewApp builds the fiber app: global middleware, /health, and the /api/v1 routes.
func NewApp(opts Options) *fiber.App {
	log := opts.Logger

	app := fiber.New(fiber.Config{
		AppName:               "vendorapi",
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(log),
	})

	app.Use(requestid.New())
	app.Use(recover.New(recover.Config{
		EnableStackTrace:  true,
		StackTraceHandler: handlers.PanicStackLogger(log),
	}))
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		events := "disabled"
		if opts.EventsEnabled {
			events = "enabled"
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": database.Status(opts.DB),
			"events":   events,
		})
	})

	apiV1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(opts.AuthService, log)
	authHandler.RegisterRoutes(apiV1)

	productHandler := handlers.NewProductHandler(opts.ProductService, log)
	productHandler.RegisterRoutes(apiV1, middleware.AuthRequired(opts.AuthService, log))

	return app
}

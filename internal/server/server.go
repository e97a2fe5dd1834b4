package server

import (
	"log"

	"pattern-sphere-be/internal/bootstrap"
	"pattern-sphere-be/internal/config"
	"pattern-sphere-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		// Room for one image at the blob limit plus the multipart framing.
		BodyLimit: int(cfg.Blob.MaxBytes) + 2*1024*1024,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}))

	// OpenTelemetry tracing middleware (no-op unless a provider is installed)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")
	protected := serverutils.JwtMiddleware(cfg.App.JwtSecret)

	c.FeatureController.RegisterRoutes(api, protected)
	c.TemplateController.RegisterRoutes(api, protected)
	c.PatternController.RegisterRoutes(api, protected)
	c.LanguageController.RegisterRoutes(api, protected)
	c.ViewController.RegisterRoutes(api, protected)
	c.ImageController.RegisterRoutes(api)
	c.EventHandler.RegisterRoutes(api)
}

// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"guide-validator/internal/app/service"
	"guide-validator/internal/transport/httpserver/handler"
	"guide-validator/internal/transport/httpserver/middleware"
	"guide-validator/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port       int
	BodyLimit  int
	Debug      bool
	AdminToken string
}

// Server wraps the Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg ServerConfig,
	searchSvc *service.SearchService,
	materializer *service.MaterializeService,
	db *gorm.DB,
	v *validator.Validator,
	logger *zap.Logger,
) *Server {
	engine := html.New("./web/templates", ".html")
	if cfg.Debug {
		engine.Reload(true)
	}

	app := fiber.New(fiber.Config{
		AppName:      "guide-validator",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        engine,
	})

	// Probes answer before any other middleware runs.
	app.Use(middleware.NewHealthCheck(db))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(cors.New())
	app.Use(compress.New())

	app.Static("/static", "./web/static")

	searchHandler := handler.NewSearchHandler(searchSvc, v, logger)
	adminHandler := handler.NewAdminHandler(materializer, searchSvc, logger)
	dashboardHandler := handler.NewDashboardHandler(searchSvc, logger)

	registerRoutes(app, cfg, searchHandler, adminHandler, dashboardHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	cfg ServerConfig,
	searchHandler *handler.SearchHandler,
	adminHandler *handler.AdminHandler,
	dashboardHandler *handler.DashboardHandler,
) {
	// Dashboard (HTML)
	app.Get("/dashboard", dashboardHandler.Render)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	v1 := app.Group("/api/v1")

	// Faceted listing search, one route tree per listing type.
	search := v1.Group("/search")
	search.Get("/:type", searchHandler.Search)
	search.Get("/:type/:id", searchHandler.GetByID)

	// Admin surface, bearer-token guarded.
	admin := v1.Group("/admin", middleware.RequireAdminToken(cfg.AdminToken))
	admin.Get("/search/:type", searchHandler.AdminSearch)
	admin.Post("/refresh", adminHandler.RefreshAll)
	admin.Post("/refresh/:source", adminHandler.RefreshSource)
	admin.Get("/sources", adminHandler.GetSources)
	admin.Get("/stats", adminHandler.GetStats)
}

// errorHandler returns a custom error handler that logs by status class.
// 404s log at DEBUG (expected client behavior), other 4xx at WARN, 5xx at
// ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		case code >= 400:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Error("unhandled error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}

package api

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/arqut/arqut-registry/internal/config"
	"github.com/arqut/arqut-registry/internal/middleware"
	"github.com/arqut/arqut-registry/internal/storage"
)

// Server represents the REST API server
type Server struct {
	app     *fiber.App
	cfg     *config.APIConfig
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new API server
func New(cfg *config.APIConfig, store storage.Storage, log *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Arqut Registry REST API",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} ARQUT-REGISTRY [INFO] [API] ${status} ${method} ${path} ${latency}\n",
		TimeFormat: "2006/01/02 15:04:05",
		CustomTags: map[string]logger.LogFunc{
			"time": func(output logger.Buffer, c *fiber.Ctx, data *logger.Data, extraParam string) (int, error) {
				return output.WriteString(time.Now().Format("2006/01/02 15:04:05"))
			},
		},
	}))

	// CORS middleware
	if len(cfg.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
			AllowMethods: "GET,POST,PATCH,DELETE",
			AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		}))
	}

	s := &Server{
		app:     app,
		cfg:     cfg,
		storage: store,
		logger:  log,
	}

	s.setupRoutes()

	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")

	api.Get("/health", s.handleHealth)

	// Mutations require an API key when one is configured; reads stay open.
	if s.cfg.APIKey.Hash != "" {
		api.Use(mutatingOnly(middleware.APIKeyAuth(s.cfg.APIKey.Hash)))
	}

	// Services
	api.Get("/services", s.handleListServices)
	api.Post("/services", s.handleCreateService)
	api.Get("/services/:id", s.handleGetService)
	api.Patch("/services/:id", s.handleUpdateService)
	api.Delete("/services/:id", s.handleDeleteService)

	// Dependency catalog
	api.Get("/dependencies", s.handleListDependencies)
	api.Post("/dependencies", s.handleCreateDependency)
	api.Patch("/dependencies/:id", s.handleUpdateDependency)
	api.Delete("/dependencies/:id", s.handleDeleteDependency)

	// Service-to-dependency bindings
	api.Get("/services/:id/dependencies", s.handleListServiceDependencies)
	api.Post("/services/:id/dependencies", s.handleCreateServiceDependency)
	api.Delete("/services/:id/dependencies/:depId", s.handleDeleteServiceDependency)

	// Service-to-service edges
	api.Get("/services/:id/service-dependencies", s.handleListServiceRelations)
	api.Post("/services/:id/service-dependencies", s.handleCreateServiceRelation)
	api.Patch("/services/:id/service-dependencies/:depId", s.handleUpdateServiceRelation)
	api.Delete("/services/:id/service-dependencies/:depId", s.handleDeleteServiceRelation)

	// Dependency graphs
	api.Get("/dependency-graph", s.handleGlobalDependencyGraph)
	api.Get("/dependency-graph/services", s.handleServicesDependencyGraph)
	api.Get("/services/:id/dependency-graph", s.handleServiceDependencyGraph)

	// Endpoints (read-only)
	api.Get("/services/:id/endpoints", s.handleListEndpoints)
	api.Get("/services/:id/endpoints/:endpointId", s.handleGetEndpoint)
}

// mutatingOnly applies a handler to everything except reads.
func mutatingOnly(h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		return h(c)
	}
}

// Start starts the API server
func (s *Server) Start() error {
	addr := fmt.Sprintf("0.0.0.0:%d", s.cfg.Port)
	s.logger.Info("Starting HTTP server", "addr", addr)
	return s.app.Listen(addr)
}

// Stop gracefully stops the API server
func (s *Server) Stop() error {
	s.logger.Info("Stopping REST API server")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing)
func (s *Server) App() *fiber.App {
	return s.app
}

// errorHandler is the global error handler
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return ErrorResp(c, code, message)
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/hmi-editor/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store                 storage.Store
	Project               ProjectService
	Sessions              SessionManager
	Version               string
	AllowSnapshotDeletion bool
	AllowedImportTypes    string
	MaxImportSize         string
	WebSocketMaxKB        int
	Log                   *logrus.Entry
}

// Handlers holds all handler instances
type Handlers struct {
	Health     HealthHandler
	Project    ProjectHandler
	Snapshot   SnapshotHandler
	TagOptions TagOptionsHandler
	Push       ProjectPushHandler

	importLimit string
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(deps.Version),
		Project:    NewProjectHandler(deps.Project),
		Snapshot:   NewSnapshotHandler(deps.Store, deps.Project, deps.AllowSnapshotDeletion, deps.AllowedImportTypes),
		TagOptions: NewTagOptionsHandler(deps.Sessions, deps.Project),
		Push:       NewWebSocketHandler(deps.Project, deps.WebSocketMaxKB, deps.Log),

		importLimit: deps.MaxImportSize,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Current project
	projectGroup := apiGroup.Group("/project")
	projectGroup.GET("", handlers.Project.HandleGetProject)
	projectGroup.POST("/commands", handlers.Project.HandleApplyCommand)
	projectGroup.GET("/export/msgpack", handlers.Project.HandleExportMsgpack)
	projectGroup.GET("/scripts", handlers.Project.HandleGetScripts)
	projectGroup.PUT("/scripts", handlers.Project.HandleSetScripts)
	projectGroup.GET("/scripts/scaling", handlers.Project.HandleGetScalingScripts)

	// Snapshots
	snapshotGroup := projectGroup.Group("/snapshots")
	snapshotGroup.POST("", handlers.Snapshot.HandleSaveSnapshot)
	snapshotGroup.GET("", handlers.Snapshot.HandleListSnapshots)
	var importMiddleware []echo.MiddlewareFunc
	if handlers.importLimit != "" {
		importMiddleware = append(importMiddleware, middleware.BodyLimit(handlers.importLimit))
	}
	snapshotGroup.POST("/import", handlers.Snapshot.HandleImportSnapshot, importMiddleware...)
	snapshotGroup.POST("/:id/load", handlers.Snapshot.HandleLoadSnapshot)
	snapshotGroup.PUT("/:id", handlers.Snapshot.HandleRenameSnapshot)
	snapshotGroup.DELETE("/:id", handlers.Snapshot.HandleDeleteSnapshot)

	// Tag options dialogs
	dialogGroup := apiGroup.Group("/tag-options")
	dialogGroup.POST("", handlers.TagOptions.HandleOpen)
	dialogGroup.GET("/:id", handlers.TagOptions.HandleGetState)
	dialogGroup.PATCH("/:id", handlers.TagOptions.HandlePatch)
	dialogGroup.PUT("/:id/params/:side/:scriptId", handlers.TagOptions.HandleSetParams)
	dialogGroup.POST("/:id/confirm", handlers.TagOptions.HandleConfirm)
	dialogGroup.DELETE("/:id", handlers.TagOptions.HandleCancel)

	RegisterWebSocketRoutes(e, handlers)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/ws/project", handlers.Push.HandleWebSocket)
}

// MiddlewareOptions configures SetupMiddleware
type MiddlewareOptions struct {
	RequestLogging bool
	RequestTimeout time.Duration
	BodyLimit      string
	EnableCORS     bool
	AllowOrigins   string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !opts.RequestLogging || c.Request().URL.Path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if opts.RequestTimeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout: opts.RequestTimeout,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, "/api/ws/")
			},
			ErrorMessage: "Request timeout",
		}))
	}

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	if opts.EnableCORS {
		origins := strings.Split(opts.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 1 && origins[0] == "" {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/mediagrid/internal/api/handler"
	"github.com/timmy/mediagrid/internal/api/middleware"
	"github.com/timmy/mediagrid/internal/config"
	"github.com/timmy/mediagrid/internal/gallery"
	"github.com/timmy/mediagrid/internal/logger"
	"github.com/timmy/mediagrid/internal/metrics"
	"github.com/timmy/mediagrid/internal/source"
)

// Dependencies are the services the router serves.
type Dependencies struct {
	Registry *gallery.Registry
	Provider source.Provider
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps Dependencies, cfg config.ServerConfig) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	log := deps.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler(deps.Registry, deps.Provider.GetProviderID())
	galleryHandler := handler.NewGalleryHandler(deps.Registry, deps.Provider.Categories())
	streamHandler := handler.NewStreamHandler(galleryHandler, func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		return origin == "" || middleware.IsOriginAllowed(origin, cfg.CORS)
	})

	// Health check
	r.GET("/health", healthHandler.Health)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Categories
		v1.GET("/categories", galleryHandler.ListCategories)

		// Views
		views := v1.Group("/views")
		views.POST("", galleryHandler.CreateView)
		views.GET("/:id", galleryHandler.GetView)
		views.DELETE("/:id", galleryHandler.DeleteView)
		views.PUT("/:id/category", galleryHandler.SelectCategory)
		views.POST("/:id/more", galleryHandler.LoadMore)
		views.GET("/:id/stream", streamHandler.Stream)
	}

	return r
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/unionhub/unionhub-api/internal/auth"
	"github.com/unionhub/unionhub-api/internal/config"
	"github.com/unionhub/unionhub-api/internal/handlers"
	"github.com/unionhub/unionhub-api/internal/logger"
	authmw "github.com/unionhub/unionhub-api/internal/middleware/auth"
	"github.com/unionhub/unionhub-api/internal/middleware/events"
	"github.com/unionhub/unionhub-api/internal/response"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps are the collaborators the router is built from. Gallery is nil when
// object storage is not configured; Tokens is nil when auth is disabled.
type Deps struct {
	Realtime   *handlers.RealtimeHandler
	BibleStudy *handlers.BibleStudyHandler
	Elections  *handlers.ElectionHandler
	Gallery    *handlers.GalleryHandler
	Tokens     authmw.TokenParser
	Database   HealthChecker
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	deps       Deps
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: s.Router(),

		// WriteTimeout stays unset so websocket connections are not cut
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Router configures the HTTP router with middleware and routes
func (s *Server) Router() *gin.Engine {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if s.config.Server.GinMode != "" {
		gin.SetMode(s.config.Server.GinMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(events.CreateEvent())
	router.Use(cors.New(s.corsConfig()))

	router.GET("/ping", s.ping)

	if s.deps.Realtime != nil {
		router.GET("/ws", s.deps.Realtime.ServeWS)
	}

	s.setupAPIRoutes(router)

	return router
}

func (s *Server) corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	origins := config.SplitList(s.config.CORS.AllowOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	if methods := config.SplitList(s.config.CORS.AllowMethods); len(methods) > 0 {
		corsConfig.AllowMethods = methods
	}
	if headers := config.SplitList(s.config.CORS.AllowHeaders); len(headers) > 0 {
		corsConfig.AllowHeaders = headers
	}
	corsConfig.ExposeHeaders = []string{events.RequestIDHeader}
	return corsConfig
}

func (s *Server) ping(c *gin.Context) {
	status := gin.H{
		"message": "UnionHub API is running",
		"status":  "healthy",
	}
	if s.deps.Database != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Database.Health(ctx); err != nil {
			logger.HTTP().Warn("Database health check failed", "error", err)
			status["status"] = "degraded"
			status["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}

// admin guards routes that change shared state
func (s *Server) admin() gin.HandlerFunc {
	return authmw.RequireRole(s.deps.Tokens, auth.RoleAdmin)
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(router *gin.Engine) {
	api := router.Group("/api")

	if h := s.deps.Realtime; h != nil {
		rt := api.Group("/realtime")
		{
			rt.GET("/presence", h.Presence)
			rt.GET("/connections", s.admin(), h.Connections)
			rt.POST("/events", s.admin(), h.PublishEvent)
		}
	}

	if h := s.deps.BibleStudy; h != nil {
		groups := api.Group("/bible-study/sessions/:session_id/locations/:location_id/groups")
		{
			groups.GET("", h.ListGroups)
			groups.POST("", s.admin(), h.AssignGroups)
		}
	}

	if h := s.deps.Elections; h != nil {
		e := api.Group("/elections/:election_id")
		{
			e.GET("/tally", h.Tally)
			e.GET("/results", h.GetResults)
			e.POST("/results", s.admin(), h.PublishResults)
			e.POST("/nominations", h.Nominate)
		}
	}

	if h := s.deps.Gallery; h != nil {
		api.POST("/gallery", s.admin(), h.Upload)
	} else {
		api.POST("/gallery", func(c *gin.Context) {
			response.ServiceUnavailableError(c, "Gallery storage is not configured")
		})
	}
}

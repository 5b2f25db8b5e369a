// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/gatekeeper/internal/auth/http"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	"github.com/allisson/gatekeeper/internal/config"
	"github.com/allisson/gatekeeper/internal/metrics"
	registryHTTP "github.com/allisson/gatekeeper/internal/registry/http"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	cache  Pinger
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and routes. It must be called before Start.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	cache Pinger,
	sessionUseCase authUseCase.SessionUseCase,
	captchaHandler *authHTTP.CaptchaHandler,
	sessionHandler *authHTTP.SessionHandler,
	userHandler *authHTTP.UserHandler,
	clientHandler *registryHTTP.ClientHandler,
	metricsProvider *metrics.Provider,
) {
	s.cache = cache

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authn := authHTTP.AuthenticationMiddleware(sessionUseCase, s.logger)

	v1 := router.Group("/v1")
	{
		v1.POST("/captcha", captchaHandler.IssueHandler)

		sessions := v1.Group("/sessions")
		{
			login := []gin.HandlerFunc{}
			if cfg.RateLimitLoginEnabled {
				login = append(login, authHTTP.LoginRateLimitMiddleware(
					ctx,
					cfg.RateLimitLoginRequestsPerSec,
					cfg.RateLimitLoginBurst,
					s.logger,
				))
			}
			login = append(login, sessionHandler.LoginHandler)

			sessions.POST("", login...)
			sessions.POST("/verify", sessionHandler.VerifyHandler)
			sessions.POST("/refresh", sessionHandler.RefreshHandler)
			sessions.DELETE("/current", sessionHandler.LogoutHandler)
			sessions.GET("", authn, sessionHandler.ListHandler)
		}

		users := v1.Group("/users")
		{
			users.POST("", userHandler.RegisterHandler)
			users.GET("/availability", userHandler.AvailabilityHandler)
			users.GET("/:id", authn, userHandler.GetHandler)
			users.DELETE("/:id/sessions", authn, userHandler.RevokeSessionsHandler)

			requireUsersAdmin := authHTTP.RequireScopeMiddleware(authHTTP.UsersAdminScope, s.logger)
			users.PATCH("/:id/status", authn, requireUsersAdmin, userHandler.SetStatusHandler)
			users.PUT("/:id/password", authn, requireUsersAdmin, userHandler.ChangePasswordHandler)
		}

		clients := v1.Group("/clients")
		{
			clients.POST("/authenticate", clientHandler.AuthenticateHandler)

			admin := clients.Group("")
			admin.Use(authn, authHTTP.RequireScopeMiddleware(registryHTTP.RegistryAdminScope, s.logger))
			admin.POST("", clientHandler.RegisterHandler)
			admin.GET("", clientHandler.ListHandler)
			admin.GET("/:id", clientHandler.GetHandler)
			admin.POST("/:id/rotate-secret", clientHandler.RotateSecretHandler)
			admin.DELETE("/:id", clientHandler.RevokeHandler)
		}
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports 503 until every backing store answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := gin.H{}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			components["cache"] = "error"
			ready = false
		} else {
			components["cache"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

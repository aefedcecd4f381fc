package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ambassadorservice "github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/service"
	assistantservice "github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/service"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/auth"
	authmiddleware "github.com/nfsdasilva237/pipomarket-assistant/internal/auth/middleware"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/conf"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
	profileservice "github.com/nfsdasilva237/pipomarket-assistant/internal/profile/service"
)

// Services groups the HTTP services mounted under /api/v1
type Services struct {
	Assistant  *assistantservice.AssistantService
	Profile    *profileservice.ProfileService
	Ambassador *ambassadorservice.AmbassadorService
}

// HTTPServer wraps the gin engine and its net/http server
type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	log    *logger.Logger
}

// NewHTTPServer builds the router. Conversation and recommendation routes
// accept guests; profile and earnings routes require authentication.
func NewHTTPServer(cfg *conf.Config, jwtManager *auth.JWTManager, services *Services, log *logger.Logger) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(logger.GinRecovery(log))
	engine.Use(logger.GinLogger(log))
	engine.Use(authmiddleware.CORS())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")

	optional := v1.Group("")
	optional.Use(authmiddleware.OptionalJWTAuth(jwtManager, log))
	services.Assistant.RegisterRoutes(optional)
	services.Ambassador.RegisterRoutes(optional)

	authed := v1.Group("")
	authed.Use(authmiddleware.JWTAuth(jwtManager, log))
	services.Profile.RegisterRoutes(authed)

	return &HTTPServer{
		engine: engine,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		log: log,
	}
}

// Start begins serving. Blocks until the listener fails or is shut down.
func (s *HTTPServer) Start() error {
	s.log.Info("http server listening on " + s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

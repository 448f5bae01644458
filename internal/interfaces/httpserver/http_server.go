package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	relaydocs "github.com/janhq/mistralhub/docs/swagger"
	"github.com/janhq/mistralhub/internal/config"
	"github.com/janhq/mistralhub/internal/domain/completion"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver/handlers"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver/routes"
)

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New constructs the HTTP server with default middleware and routes.
func New(cfg *config.Config, log zerolog.Logger, completionService *completion.Service) *HttpServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	relaydocs.SwaggerInfo.BasePath = "/"

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.RequestID())
	engine.Use(middlewares.TracingMiddleware(cfg.ServiceName))
	engine.Use(middlewares.LoggingMiddleware(log))
	engine.Use(middlewares.MetricsMiddleware())
	engine.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))

	handlerProvider := handlers.NewProvider(completionService, log)
	routeProvider := routes.NewProvider(handlerProvider)
	registerCoreRoutes(engine, cfg, routeProvider)

	return &HttpServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
	}
}

// Handler exposes the engine, mainly for tests.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	// No WriteTimeout: chat responses are long lived streams bounded by the relay timeout.
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("Context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config, routeProvider *routes.Provider) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": cfg.ServiceName,
			"status":  "ok",
		})
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.EnableSwagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routeProvider.Register(engine)
}

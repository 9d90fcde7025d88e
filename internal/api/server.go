// Package api serves the scoring engine over HTTP for the browser front end.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/huangsam/kpiboard/internal/contract"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Server holds what the route handlers share.
type Server struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	logger  *zap.Logger
}

// NewRouter builds the gin engine with middleware and every route registered.
// This is exposed for unit testing.
func NewRouter(baseCfg *contract.Config, mgr contract.CacheManager, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{baseCfg: baseCfg, mgr: mgr, logger: logger}

	r := gin.New()
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(Recovery(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     baseCfg.AllowOrigins,
		AllowAllOrigins:  len(baseCfg.AllowOrigins) == 0,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	r.GET("/health", s.handleHealth)
	r.GET("/operators", s.handleOperators)
	r.POST("/update", s.handleUpdate)
	r.GET("/kpi-template", s.handleTemplate)
	r.GET("/performance", s.handleGetPerformance)
	r.POST("/performance", s.handleSavePerformance)
	r.POST("/scores", s.handleScores)
	r.POST("/auto-calculate", s.handleAutoCalculate)
	r.GET("/performance-history", s.handleHistory)
	return r
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           NewRouter(cfg, mgr, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", zap.String("addr", cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("http api shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

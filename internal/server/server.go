// Package server exposes recommendations over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/vendor-matcher/internal/ranking"
	"github.com/spigell/vendor-matcher/internal/recommend"
	"github.com/spigell/vendor-matcher/internal/vendors"
)

const (
	DefaultAddr = ":8080"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Service is the recommendation engine the routes are served from.
type Service interface {
	Recommend(ctx context.Context, req ranking.Request) (*recommend.Response, error)
	Vendors(ctx context.Context, refresh bool) (*vendors.Vendors, error)
}

// Options configure the router.
type Options struct {
	// RecommendLimit throttles POST /api/recommendations per client. Zero disables it.
	RecommendLimit RateLimit
}

// NewRouter constructs the gin engine with middleware and routes registered.
func NewRouter(svc Service, logger *zap.Logger, opts Options) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		RequestID(),
		Logging(logger),
		Recovery(logger),
	)

	h := &handlers{svc: svc, logger: logger}

	api := r.Group("/api")
	api.GET("/health", h.health)
	api.GET("/vendors", h.listVendors)

	recommendHandlers := []gin.HandlerFunc{h.recommend}
	if opts.RecommendLimit.enabled() {
		recommendHandlers = append([]gin.HandlerFunc{Throttle(NewClientLimiter(opts.RecommendLimit, nil))}, recommendHandlers...)
	}
	api.POST("/recommendations", recommendHandlers...)

	return r
}

// Run serves the router on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

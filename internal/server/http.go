package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-shelf-service/internal/observability"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Mounter registers a domain's routes under /api. importLimit is the rate
// limiter for bulk import routes.
type Mounter interface {
	MountRoutes(r chi.Router, importLimit func(http.Handler) http.Handler)
}

type RouterConfig struct {
	CORSOrigins     []string
	ImportRateLimit int
	RequestTimeout  time.Duration
	Metrics         *observability.Metrics
	DB              Pinger
	Logger          logger.ZapLogger
}

func NewRouter(cfg RouterConfig, mounters ...Mounter) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		accessLog(cfg.Logger),
		middleware.Recoverer,
		cfg.Metrics.Middleware,
	)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/healthz", healthz(cfg.DB))
	r.Handle("/metrics", cfg.Metrics.Handler())

	var importLimit func(http.Handler) http.Handler
	if cfg.ImportRateLimit > 0 {
		importLimit = httprate.Limit(cfg.ImportRateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
	}
	r.Route("/api", func(r chi.Router) {
		for _, m := range mounters {
			m.MountRoutes(r, importLimit)
		}
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
	}
}

func accessLog(log logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("HTTP request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// ServeHTTP runs srv until ctx is cancelled, then shuts it down within
// shutdownTimeout.
func ServeHTTP(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log logger.ZapLogger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", srv.Addr))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

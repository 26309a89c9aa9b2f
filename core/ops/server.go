// Package ops serves the operational HTTP endpoint: liveness with a storage
// ping and Prometheus metrics.
package ops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/partyfinder/core/buildinfo"
	"github.com/m3rciful/partyfinder/core/logger"
)

const (
	pingTimeout       = 2 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the ops HTTP server.
type Server struct {
	listen string
	router *gin.Engine
}

// New returns a Server bound to listen once Run is called.
func New(listen string, p Pinger) *Server {
	return &Server{listen: listen, router: NewRouter(p)}
}

// NewRouter builds the ops routes: GET /healthz and GET /metrics.
func NewRouter(p Pinger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		if p != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				logger.LogEvent(ctx, logger.Ops, slog.LevelWarn, "ops.health",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": buildinfo.Version})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Handler exposes the routes for embedding or tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("ops: listen %s: %w", s.listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	logger.LogEvent(ctx, logger.Ops, slog.LevelInfo, "ops.listen",
		slog.String("addr", ln.Addr().String()),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-errCh
		logger.LogEvent(shutdownCtx, logger.Ops, slog.LevelInfo, "ops.stop",
			slog.String("status", logger.Status(err)),
		)
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ops: serve: %w", err)
	}
}

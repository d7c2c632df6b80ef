// Package api serves the scheduling endpoints over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zulandar/calyard/internal/config"
	"github.com/zulandar/calyard/internal/schedule"
	"github.com/zulandar/calyard/internal/store"
)

// Scheduler runs previews and commits.
type Scheduler interface {
	Preview(ctx context.Context, workspaceID string, opts schedule.Options) (*schedule.Result, error)
	Commit(ctx context.Context, workspaceID string, opts schedule.Options) (*schedule.Result, error)
}

// Directory answers workspace, membership and status lookups.
type Directory interface {
	Workspace(ctx context.Context, id string) (schedule.Workspace, error)
	IsMember(ctx context.Context, workspaceID, userID string) (bool, error)
	Status(ctx context.Context, workspaceID string) (*store.Status, error)
}

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Scheduler  Scheduler
	Directory  Directory
	Port       int
	CronSecret string
	RateLimit  config.RateLimitConfig
	Log        zerolog.Logger
	Out        io.Writer
}

// NewRouter builds the Gin engine with every route registered.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Scheduler == nil {
		return nil, errors.New("api: scheduler is required")
	}
	if opts.Directory == nil {
		return nil, errors.New("api: directory is required")
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Log))
	registerRoutes(router, opts)
	return router, nil
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	gin.SetMode(gin.ReleaseMode)
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			opts.Log.Warn().Err(err).Msg("api: shutdown")
		}
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "API listening on http://localhost:%d\n", opts.Port)
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "api").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zulandar/calyard/internal/schedule"
)

const maxBodyBytes = 64 << 10

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limits := newLimiters(opts.RateLimit)
	ws := router.Group("/workspaces/:wsId/calendar/schedule")
	ws.Use(requireWorkspaceID(), authenticate(opts.Directory, opts.CronSecret, opts.Log))
	ws.POST("", limits.middleware(), handleCommit(opts.Scheduler, opts.Log))
	ws.GET("", handleStatus(opts.Directory, opts.Log))
	ws.POST("/preview", handlePreview(opts.Scheduler, opts.Log))
}

func handleCommit(s Scheduler, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.Commit(c.Request.Context(), c.Param("wsId"), parseOptions(c))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, newRunResponse(res))
	}
}

func handlePreview(s Scheduler, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.Preview(c.Request.Context(), c.Param("wsId"), parseOptions(c))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, newPreviewResponse(res))
	}
}

func handleStatus(d Directory, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := d.Status(c.Request.Context(), c.Param("wsId"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, newStatusResponse(st))
	}
}

// parseOptions reads {windowDays, forceReschedule} from the body. Missing,
// malformed or mistyped fields fall back to their defaults.
func parseOptions(c *gin.Context) schedule.Options {
	var opts schedule.Options
	if c.Request.Body == nil {
		return opts
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		return opts
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return opts
	}
	if raw, ok := fields["windowDays"]; ok {
		var days float64
		if err := json.Unmarshal(raw, &days); err == nil {
			opts.WindowDays = windowDays(days)
		}
	}
	if raw, ok := fields["forceReschedule"]; ok {
		var force bool
		if err := json.Unmarshal(raw, &force); err == nil {
			opts.Force = force
		}
	}
	return opts
}

// windowDays bounds a float before the int conversion so huge values cannot
// wrap around.
func windowDays(days float64) int {
	switch {
	case math.IsNaN(days):
		return schedule.DefaultWindowDays
	case days > schedule.MaxWindowDays:
		return schedule.MaxWindowDays
	case days < 0:
		return schedule.MinWindowDays
	}
	return schedule.ClampWindowDays(int(days))
}

func writeError(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, schedule.ErrWorkspaceNotFound):
		abort(c, http.StatusNotFound, "workspace not found")
	case errors.Is(err, schedule.ErrRunInProgress):
		abort(c, http.StatusConflict, "a scheduling run is already in progress")
	default:
		log.Error().Err(err).Str("workspace", c.Param("wsId")).Str("path", c.FullPath()).Msg("scheduling request failed")
		abort(c, http.StatusInternalServerError, "failed to run scheduler")
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

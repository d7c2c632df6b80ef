package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/zulandar/calyard/internal/config"
)

// UserHeader carries the caller identity set by the upstream gateway.
const UserHeader = "X-User-ID"

func requireWorkspaceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param("wsId")); err != nil {
			abort(c, http.StatusBadRequest, "invalid workspace id")
			return
		}
		c.Next()
	}
}

// authenticate admits the cron caller by bearer secret, or a member of the
// workspace by user header.
func authenticate(d Directory, cronSecret string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearer(c.GetHeader("Authorization")); ok {
			if cronSecret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cronSecret)) != 1 {
				abort(c, http.StatusUnauthorized, "invalid credentials")
				return
			}
			c.Next()
			return
		}

		user := strings.TrimSpace(c.GetHeader(UserHeader))
		if user == "" {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		wsID := c.Param("wsId")
		if _, err := d.Workspace(c.Request.Context(), wsID); err != nil {
			writeError(c, log, err)
			return
		}
		ok, err := d.IsMember(c.Request.Context(), wsID, user)
		if err != nil {
			writeError(c, log, err)
			return
		}
		if !ok {
			abort(c, http.StatusForbidden, "not a member of this workspace")
			return
		}
		c.Next()
	}
}

func bearer(h string) (string, bool) {
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// limiters holds one token bucket per workspace.
type limiters struct {
	mu     sync.Mutex
	limit  rate.Limit
	burst  int
	bucket map[string]*rate.Limiter
}

func newLimiters(cfg config.RateLimitConfig) *limiters {
	perMinute, burst := cfg.PerMinute, cfg.Burst
	if perMinute <= 0 {
		perMinute = 6
	}
	if burst <= 0 {
		burst = 1
	}
	return &limiters{
		limit:  rate.Limit(float64(perMinute) / 60),
		burst:  burst,
		bucket: make(map[string]*rate.Limiter),
	}
}

func (l *limiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.bucket[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.bucket[key] = lim
	}
	return lim
}

func (l *limiters) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.Param("wsId")).Allow() {
			abort(c, http.StatusTooManyRequests, "too many scheduling requests")
			return
		}
		c.Next()
	}
}

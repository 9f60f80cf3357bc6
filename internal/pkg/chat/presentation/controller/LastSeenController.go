package controller

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	cacheport "chatwire/internal/infrastructure/cache/port"
	"chatwire/internal/infrastructure/realtime"
)

// lastSeenKey is written by the socket controller on disconnect.
func lastSeenKey(publicID string) string { return "last_seen:" + publicID }

// LastSeenController reports whether a user is online and, if not, when
// they were last connected (from the cache; absent for users never seen).
// Works without a cache: online detection still comes from the registry,
// last-seen history is just unavailable.
type LastSeenController struct {
	cache    cacheport.Cache // nil when Redis is not configured
	registry *realtime.Registry
}

func NewLastSeenController(cache cacheport.Cache, registry *realtime.Registry) *LastSeenController {
	return &LastSeenController{cache: cache, registry: registry}
}

func (h *LastSeenController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		publicID := c.Param("uuid")

		if h.registry.SessionCount(publicID) > 0 {
			ok(c, gin.H{"online": true})
			return
		}

		if h.cache == nil {
			ok(c, gin.H{"online": false, "last_seen": nil})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		lastSeen, err := h.cache.Get(ctx, lastSeenKey(publicID))
		if err != nil {
			if !errors.Is(err, cacheport.ErrMiss) {
				fail(c, err)
				return
			}
			ok(c, gin.H{"online": false, "last_seen": nil})
			return
		}
		ok(c, gin.H{"online": false, "last_seen": lastSeen})
	}
}

package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	cacheport "chatwire/internal/infrastructure/cache/port"
	"chatwire/internal/infrastructure/realtime"
)

// fakeCache serves a fixed set of keys; everything else is a miss.
type fakeCache struct {
	values map[string]string
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return "", cacheport.ErrMiss
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	if c.values == nil {
		c.values = make(map[string]string)
	}
	c.values[key] = value
	return nil
}

func (c *fakeCache) Del(context.Context, ...string) (int64, error) { return 0, nil }
func (c *fakeCache) Ping(context.Context) error                    { return nil }
func (c *fakeCache) Close() error                                  { return nil }

func lastSeenRequest(t *testing.T, cache cacheport.Cache, uuid string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users/:uuid/last_seen", NewLastSeenController(cache, realtime.NewRegistry()).Handle())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/"+uuid+"/last_seen", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestLastSeenKnownUser(t *testing.T) {
	cache := &fakeCache{values: map[string]string{
		lastSeenKey("alice-uuid"): "2025-03-01T12:00:00Z",
	}}

	w := lastSeenRequest(t, cache, "alice-uuid")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"online":false,"last_seen":"2025-03-01T12:00:00Z"}`, w.Body.String())
}

func TestLastSeenNeverSeenUser(t *testing.T) {
	w := lastSeenRequest(t, &fakeCache{}, "ghost-uuid")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"online":false,"last_seen":null}`, w.Body.String())
}

func TestLastSeenWithoutCacheStillAnswers(t *testing.T) {
	w := lastSeenRequest(t, nil, "alice-uuid")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"online":false,"last_seen":null}`, w.Body.String())
}

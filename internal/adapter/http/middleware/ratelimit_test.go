package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	redisStore "webhook-dispatch-service/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(t *testing.T, rule RateLimitRule) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := redisStore.NewRateLimitStore(client)

	router := gin.New()
	router.POST("/events", RateLimiter(store, "events", rule, zlog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	return router
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router := rateLimitedRouter(t, RateLimitRule{Limit: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/events", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router := rateLimitedRouter(t, RateLimitRule{Limit: 1, Window: time.Minute})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/events", nil))
	assert.Equal(t, http.StatusAccepted, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/events", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE_001")
}

func TestDefaultRateLimitRules_CoverEndpointGroups(t *testing.T) {
	rules := DefaultRateLimitRules()
	for _, group := range []string{"events", "deliveries", "maintenance"} {
		rule, ok := rules[group]
		assert.True(t, ok, group)
		assert.Positive(t, rule.Limit)
		assert.Positive(t, rule.Window)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-assistant/backend/internal/middleware"
)

func TestStateOmitsQuotaWithoutLimiter(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/api/v1/state", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "View Saved Recipes (0)", body["savedCountLabel"])
	assert.NotContains(t, body, "rateLimitRemaining")
}

func TestStateReportsRemainingQuota(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set")
	}
	client := redis.NewClient(&redis.Options{Addr: host + ":6379"})
	defer client.Close()

	limiter := middleware.NewRateLimiter(client, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     3,
		KeyPrefix: "test:" + uuid.NewString(),
	})
	env := newLimitedTestEnv(t, nil, limiter)

	remaining := func() float64 {
		rr := env.do(t, http.MethodGet, "/api/v1/state", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Contains(t, body, "rateLimitReset")
		return body["rateLimitRemaining"].(float64)
	}

	assert.Equal(t, 3.0, remaining())
	require.Equal(t, http.StatusOK, env.submitJSON(t, "eggs", "casual").Code)
	assert.Equal(t, 2.0, remaining())
}

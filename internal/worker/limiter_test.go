package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_New(t *testing.T) {
	assert.Equal(t, 5, NewLimiter(10, 5).defaultBurst)
	assert.Equal(t, 5, NewLimiter(10, -1).defaultBurst, "non-positive burst falls back to 5")
}

func TestLimiter_WaitPerHost(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "http://registry.example.com/847150"))
	require.NoError(t, limiter.Wait(ctx, "http://other.example.com/847150"))

	assert.Len(t, limiter.limiters, 2)
}

func TestLimiter_BurstExhausted(t *testing.T) {
	limiter := NewLimiter(1, 1)
	url := "http://registry.example.com/847150"

	assert.True(t, limiter.Allow(url))
	assert.False(t, limiter.Allow(url), "second request within the same second is denied")
	assert.True(t, limiter.Allow("http://another.example.com"), "hosts are limited independently")
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewLimiter(0.1, 1)
	url := "http://registry.example.com"
	require.True(t, limiter.Allow(url))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, limiter.Wait(ctx, url))
}

func TestLimiter_ZeroRateIsUnlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 50; i++ {
		require.True(t, limiter.Allow("http://registry.example.com"))
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(0, 1)
	limiter.SetHostRate("slow.example.com", 1, 1)

	assert.True(t, limiter.Allow("http://slow.example.com/a"))
	assert.False(t, limiter.Allow("http://slow.example.com/b"))
}

func TestLimiter_InvalidURL(t *testing.T) {
	limiter := NewLimiter(10, 1)
	assert.False(t, limiter.Allow("://bad"))
	assert.Error(t, limiter.Wait(context.Background(), "://bad"))
}

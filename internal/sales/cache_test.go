package sales

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisReceiptCache_Miss(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, "receipt:424242")

	cache := NewRedisReceiptCache(client, time.Minute)
	_, ok, err := cache.Get(ctx, 424242)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisReceiptCache_SetGet(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, "receipt:424243")
	defer client.Del(ctx, "receipt:424243")

	cache := NewRedisReceiptCache(client, time.Minute)
	receipt := RenderReceipt(samplePurchase(), 274.85, 247.365, 522.215)
	require.NoError(t, cache.Set(ctx, 424243, receipt))

	got, ok, err := cache.Get(ctx, 424243)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, receipt, got)

	ttl, err := client.TTL(ctx, "receipt:424243").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute, "unexpected ttl %v", ttl)
}

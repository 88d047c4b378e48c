package sales

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const receiptKeyPrefix = "receipt:"

// ReceiptCache stores rendered receipts. Sales never change after they are
// persisted, so an entry stays valid until it expires.
type ReceiptCache interface {
	// Get returns the cached receipt and whether it was present.
	Get(ctx context.Context, saleID int64) (string, bool, error)
	Set(ctx context.Context, saleID int64, receipt string) error
}

type RedisReceiptCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReceiptCache(client *redis.Client, ttl time.Duration) *RedisReceiptCache {
	return &RedisReceiptCache{client: client, ttl: ttl}
}

func (r *RedisReceiptCache) Get(ctx context.Context, saleID int64) (string, bool, error) {
	v, err := r.client.Get(ctx, receiptKey(saleID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisReceiptCache) Set(ctx context.Context, saleID int64, receipt string) error {
	return r.client.Set(ctx, receiptKey(saleID), receipt, r.ttl).Err()
}

func receiptKey(saleID int64) string {
	return receiptKeyPrefix + strconv.FormatInt(saleID, 10)
}

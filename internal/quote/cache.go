package quote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cedran/backend-frete/internal/obs"
)

// Cache memoises aggregator responses in Redis for identical shipment
// payloads. Rate quotes are deterministic for a given payload over short
// windows, so a small TTL spares the aggregator round trip.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs the response cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get looks up a cached response for the payload. It reports whether a valid
// entry existed; decode and transport errors read as a miss.
func (c *Cache) Get(ctx context.Context, payload Payload) (Response, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return Response{}, false
	}
	data, err := c.client.Get(ctx, c.key(payload)).Bytes()
	if err != nil {
		c.count("miss")
		return Response{}, false
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.count("miss")
		return Response{}, false
	}
	c.count("hit")
	return resp, true
}

func (c *Cache) count(result string) {
	if obs.QuoteCacheTotal != nil {
		obs.QuoteCacheTotal.WithLabelValues(result).Inc()
	}
}

// Set stores the response under the payload's hash with the configured TTL.
func (c *Cache) Set(ctx context.Context, payload Payload, resp Response) error {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(payload), data, c.ttl).Err()
}

func (c *Cache) key(payload Payload) string {
	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return "quote:resp:" + hex.EncodeToString(sum[:])
}

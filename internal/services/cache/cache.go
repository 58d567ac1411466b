// Package cache provides a Redis-backed cache for assessment responses. The
// engine is deterministic for a fixed input, so a repeated request with an
// identical payload can be served from cache instead of re-running the
// classifier and the Gemini signals.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"credit-risk-engine/internal/models"
)

// AssessmentCache caches assessment responses keyed by request hash.
type AssessmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache against the given Redis address.
func New(addr string, ttl time.Duration) *AssessmentCache {
	return &AssessmentCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Key derives the cache key from the full request payload. Any change to the
// input (bills, notes, images) produces a different key.
func Key(req *models.LoanAssessmentRequest) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return "assessment:" + req.LoanID
	}
	sum := sha256.Sum256(payload)
	return "assessment:" + req.LoanID + ":" + hex.EncodeToString(sum[:16])
}

// Get returns the cached response for a key, if present.
func (c *AssessmentCache) Get(ctx context.Context, key string) (*models.AssessmentResponse, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var resp models.AssessmentResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// Set stores a response under a key with the configured TTL.
func (c *AssessmentCache) Set(ctx context.Context, key string, resp *models.AssessmentResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

// Close releases the Redis connection.
func (c *AssessmentCache) Close() error {
	return c.client.Close()
}

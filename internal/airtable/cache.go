package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"formbridge/internal/platform/redis"
)

const schemaKeyPrefix = "schema:"

// SchemaCache serves table field discovery from redis with a TTL so the
// authoring UI stays within provider rate limits. A nil cache (redis not
// configured) always misses.
type SchemaCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewSchemaCache constructs a schema cache. client may be nil.
func NewSchemaCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *SchemaCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaCache{client: client, ttl: ttl, logger: logger}
}

// Get returns cached fields for base+table, or found=false on a miss.
func (c *SchemaCache) Get(ctx context.Context, baseID, tableID string) ([]DiscoveredField, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, schemaKey(baseID, tableID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.WarnContext(ctx, "schema cache read failed", "error", err)
		}
		return nil, false
	}
	var fields []DiscoveredField
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// Put stores discovered fields best-effort; cache write failures never fail
// the discovery call.
func (c *SchemaCache) Put(ctx context.Context, baseID, tableID string, fields []DiscoveredField) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, schemaKey(baseID, tableID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "schema cache write failed", "error", err)
	}
}

func schemaKey(baseID, tableID string) string {
	return schemaKeyPrefix + baseID + ":" + tableID
}

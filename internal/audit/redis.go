package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// StreamAdder is the part of a go-redis client used by RedisShipper.
// *redis.Client, *redis.ClusterClient and redis.UniversalClient satisfy it.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisShipper appends records to a Redis stream with XADD. Each entry carries
// the indexable columns as separate fields and the full record as JSON.
type RedisShipper struct {
	client StreamAdder
	stream string
	maxLen int64
}

// NewRedisShipper creates a stream shipper on client.
func NewRedisShipper(client StreamAdder, cfg *config.AuditRedisConfig) (*RedisShipper, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	stream := cfg.Stream
	if stream == "" {
		stream = "tecnm:activity_logs"
	}
	return &RedisShipper{client: client, stream: stream, maxLen: cfg.MaxLen}, nil
}

func (rs *RedisShipper) Ship(ctx context.Context, record *models.ActivityLog) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal activity log: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: rs.stream,
		Values: map[string]any{
			"id":            record.ID,
			"action":        string(record.Action),
			"entity":        record.Entity,
			"loggable_type": record.LoggableType,
			"loggable_id":   record.LoggableID,
			"record":        data,
		},
	}
	if rs.maxLen > 0 {
		args.MaxLen = rs.maxLen
		args.Approx = true
	}

	if err := rs.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to add to stream %s: %w", rs.stream, err)
	}
	return nil
}

// Close is a no-op; the client is shared and closed by its owner.
func (rs *RedisShipper) Close() error { return nil }

// Package publisher emits ingestion lifecycle events to Redis streams
// for downstream consumers (club site, stats dashboards).
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/etros/scorebook/internal/store"
)

// Stream names.
const (
	UploadStatusStream  = "uploads.status"
	MatchIngestedStream = "matches.ingested"
)

// RedisStreamPublisher publishes events to Redis streams.
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a publisher from an existing client.
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PublishUploadStatus publishes an upload lifecycle transition.
func (rsp *RedisStreamPublisher) PublishUploadStatus(ctx context.Context, upload *store.Upload) error {
	return rsp.publish(ctx, UploadStatusStream, upload)
}

// PublishMatchIngested publishes a freshly ingested match.
func (rsp *RedisStreamPublisher) PublishMatchIngested(ctx context.Context, match *store.Match) error {
	return rsp.publish(ctx, MatchIngestedStream, match)
}

func (rsp *RedisStreamPublisher) publish(ctx context.Context, stream string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

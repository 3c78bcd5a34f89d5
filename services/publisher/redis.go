package publisher

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"ebaysync/internal/listing"
	"ebaysync/logger"
	apperr "ebaysync/pkg/errors"
)

// RedisPublisher implements Publisher using a Redis stream
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int
	log    *logger.Logger
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, stream string, maxLen int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		log:    logger.ForPublisher(),
	}
}

// Publish appends the record as JSON to the stream, keyed by its link.
// The stream is capped at the configured length.
func (p *RedisPublisher) Publish(ctx context.Context, record *listing.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return apperr.NewPublisher("redis", "failed to marshal record", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: int64(p.maxLen),
		Approx: true,
		Values: map[string]interface{}{
			"link":   record.Link,
			"record": data,
		},
	}).Err()
	if err != nil {
		return apperr.NewPublisher("redis", "failed to publish record", err)
	}
	p.log.Debug().Str("link", record.Link).Str("stream", p.stream).Msg("Published record")
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

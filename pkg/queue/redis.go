package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/grantboard/ingest-worker/pkg/common/config"
	"github.com/grantboard/ingest-worker/pkg/common/logger"
)

// Entries left pending longer than this are reclaimed from dead consumers
// before new entries are read.
const redeliverAfter = time.Minute

// RedisClient consumes a Redis Stream through a consumer group. The stream
// entry ID doubles as the receipt handle; Delete acknowledges and removes the
// entry, and unacknowledged entries are redelivered via the pending entries
// list.
type RedisClient struct {
	rdb         *redis.Client
	stream      string
	group       string
	consumer    string
	wait        time.Duration
	maxMessages int
}

func NewRedisClient(stream, group string) (*RedisClient, error) {
	cfg := config.Load()
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.XGroupCreateMkStream(ctx, stream, group, "0").Err(); err != nil &&
		!strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("creating consumer group %s: %w", group, err)
	}

	client := &RedisClient{
		rdb:         rdb,
		stream:      stream,
		group:       group,
		consumer:    fmt.Sprintf("%s-%s", group, uuid.New().String()),
		wait:        cfg.QueueWaitTime,
		maxMessages: cfg.QueueMaxMessages,
	}

	logger.Log.WithFields(map[string]interface{}{
		"stream":   stream,
		"group":    group,
		"consumer": client.consumer,
	}).Info("Connected to Redis stream")

	return client, nil
}

func (c *RedisClient) ReceiveBatch(ctx context.Context) ([]Message, error) {
	out := make([]Message, 0, c.maxMessages)

	// Reclaim stale pending entries first so deliveries lost by a crashed
	// consumer are retried ahead of new work.
	claimed, _, err := c.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.stream,
		Group:    c.group,
		Consumer: c.consumer,
		MinIdle:  redeliverAfter,
		Start:    "0-0",
		Count:    int64(c.maxMessages),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("claiming pending entries: %w", err)
	}
	for _, m := range claimed {
		out = append(out, toMessage(m))
	}
	if len(out) >= c.maxMessages {
		return out, nil
	}

	streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    int64(c.maxMessages - len(out)),
		Block:    c.wait,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Long poll elapsed without new entries.
			return out, nil
		}
		return nil, fmt.Errorf("reading stream %s: %w", c.stream, err)
	}

	for _, s := range streams {
		for _, m := range s.Messages {
			out = append(out, toMessage(m))
		}
	}

	return out, nil
}

func (c *RedisClient) Delete(ctx context.Context, receiptHandle string) error {
	if err := c.rdb.XAck(ctx, c.stream, c.group, receiptHandle).Err(); err != nil {
		return fmt.Errorf("acking entry %s: %w", receiptHandle, err)
	}
	return c.rdb.XDel(ctx, c.stream, receiptHandle).Err()
}

func (c *RedisClient) Close() error {
	return c.rdb.Close()
}

func toMessage(m redis.XMessage) Message {
	body, _ := m.Values["body"].(string)
	return Message{Body: body, ReceiptHandle: m.ID}
}

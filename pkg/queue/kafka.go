package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/grantboard/ingest-worker/pkg/common/config"
	"github.com/grantboard/ingest-worker/pkg/common/logger"
)

// Outstanding (fetched but uncommitted) messages are capped at this multiple
// of the batch size. Hitting the cap means an early offset has gone
// unpersisted for a long stretch while later work piled up behind it; the
// reader is then recreated so the group rewinds to the committed watermark
// and redelivers everything still outstanding.
const maxOutstandingBatches = 10

// KafkaClient adapts a Kafka consumer group to the batch receive/delete
// contract. Consumer-group commits are a per-partition watermark: committing
// offset N acknowledges every offset at or below N. Delete therefore records
// the acknowledgment and commits only the contiguous prefix of acknowledged
// offsets, holding the watermark at any earlier message that is still
// unacknowledged so a skipped message stays redeliverable.
type KafkaClient struct {
	brokers     []string
	topic       string
	groupID     string
	wait        time.Duration
	maxMessages int

	mu      sync.Mutex
	reader  *kafka.Reader
	tracker *offsetTracker
}

func NewKafkaClient(topic, groupID string) *KafkaClient {
	cfg := config.Load()

	c := &KafkaClient{
		brokers:     cfg.KafkaBrokers,
		topic:       topic,
		groupID:     groupID,
		wait:        cfg.QueueWaitTime,
		maxMessages: cfg.QueueMaxMessages,
		tracker:     newOffsetTracker(),
	}
	c.reader = c.newReader()
	return c
}

func (c *KafkaClient) newReader() *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.brokers,
		Topic:    c.topic,
		GroupID:  c.groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
}

func (c *KafkaClient) ReceiveBatch(ctx context.Context) ([]Message, error) {
	c.mu.Lock()
	if c.tracker.outstanding() >= maxOutstandingBatches*c.maxMessages {
		logger.Log.WithField("outstanding", c.tracker.outstanding()).
			Warn("Too many uncommitted messages, rewinding to committed offsets")
		c.reader.Close()
		c.reader = c.newReader()
		c.tracker = newOffsetTracker()
	}
	reader := c.reader
	c.mu.Unlock()

	out := make([]Message, 0, c.maxMessages)

	fetchCtx, cancel := context.WithTimeout(ctx, c.wait)
	defer cancel()

	for len(out) < c.maxMessages {
		m, err := reader.FetchMessage(fetchCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				// Long poll elapsed; return what arrived.
				return out, nil
			}
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return out, ctx.Err()
			}
			return nil, fmt.Errorf("fetching message: %w", err)
		}

		c.mu.Lock()
		c.tracker.track(m)
		c.mu.Unlock()

		out = append(out, Message{Body: string(m.Value), ReceiptHandle: handleFor(m)})
	}

	return out, nil
}

// Delete acknowledges one message. The group offset only moves once every
// earlier fetched offset in the partition is acknowledged too; until then the
// acknowledgment is recorded and the commit is deferred.
func (c *KafkaClient) Delete(ctx context.Context, receiptHandle string) error {
	partition, offset, err := parseHandle(receiptHandle)
	if err != nil {
		return err
	}

	c.mu.Lock()
	reader := c.reader
	tracker := c.tracker
	if !tracker.ack(partition, offset) {
		c.mu.Unlock()
		return fmt.Errorf("unknown receipt handle %s", receiptHandle)
	}
	candidate, ok := tracker.commitCandidate(partition)
	c.mu.Unlock()
	if !ok {
		return nil
	}

	if err := reader.CommitMessages(ctx, candidate); err != nil {
		return fmt.Errorf("committing offset for %s: %w", receiptHandle, err)
	}

	c.mu.Lock()
	tracker.markCommitted(partition, candidate.Offset)
	c.mu.Unlock()
	return nil
}

func (c *KafkaClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker = newOffsetTracker()
	return c.reader.Close()
}

func handleFor(m kafka.Message) string {
	return fmt.Sprintf("%d-%d", m.Partition, m.Offset)
}

func parseHandle(handle string) (int, int64, error) {
	p, o, ok := strings.Cut(handle, "-")
	if ok {
		partition, perr := strconv.Atoi(p)
		offset, oerr := strconv.ParseInt(o, 10, 64)
		if perr == nil && oerr == nil {
			return partition, offset, nil
		}
	}
	return 0, 0, fmt.Errorf("malformed receipt handle %s", handle)
}

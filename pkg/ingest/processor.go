package ingest

import (
	"context"

	"github.com/grantboard/ingest-worker/pkg/common/logger"
	"github.com/grantboard/ingest-worker/pkg/observability/metrics"
	"github.com/grantboard/ingest-worker/pkg/queue"
)

// RecordStore is the consumed persistence capability: an idempotent upsert
// keyed on grant_id.
type RecordStore interface {
	Upsert(ctx context.Context, rec *GrantRecord) error
}

// MessageDeleter acknowledges a message so the queue stops redelivering it.
type MessageDeleter interface {
	Delete(ctx context.Context, receiptHandle string) error
}

// Processor works through a batch one message at a time. Each message is an
// isolated unit of work: transform, upsert, then delete. A failure anywhere
// skips that message and leaves it queued for redelivery; it never stops the
// rest of the batch.
type Processor struct {
	transformer *Transformer
	store       RecordStore
	queue       MessageDeleter
}

func NewProcessor(transformer *Transformer, store RecordStore, queue MessageDeleter) *Processor {
	return &Processor{
		transformer: transformer,
		store:       store,
		queue:       queue,
	}
}

func (p *Processor) Process(ctx context.Context, messages []queue.Message) {
	for _, msg := range messages {
		p.processOne(ctx, msg)
	}
}

func (p *Processor) processOne(ctx context.Context, msg queue.Message) {
	record, err := p.transformer.Transform(msg.Body)
	if err != nil {
		reason, _ := ClassifyTransformError(err)
		if reason == ReasonUnparsableDate {
			metrics.IncUnparsableSkipped()
		} else {
			metrics.IncMalformedSkipped()
		}
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"receipt_handle": msg.ReceiptHandle,
			"reason":         string(reason),
		}).Warn("Skipping message that could not be transformed")
		return
	}

	if err := p.store.Upsert(ctx, record); err != nil {
		metrics.IncStorageFailure()
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"grant_id":       record.GrantID,
			"receipt_handle": msg.ReceiptHandle,
		}).Error("Failed to store grant record, message left queued")
		return
	}
	metrics.IncStored()

	// The record is durable from here on. A failed delete only means a
	// harmless duplicate delivery later, absorbed by the upsert.
	if err := p.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		metrics.IncDeleteFailure()
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"grant_id":       record.GrantID,
			"receipt_handle": msg.ReceiptHandle,
		}).Warn("Failed to delete message after storing record")
		return
	}
	metrics.IncDeleted()

	logger.Log.WithFields(map[string]interface{}{
		"grant_id": record.GrantID,
		"title":    record.Title,
	}).Info("Ingested grant opportunity")
}

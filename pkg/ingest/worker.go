package ingest

import (
	"context"
	"time"

	"github.com/grantboard/ingest-worker/pkg/common/logger"
	"github.com/grantboard/ingest-worker/pkg/observability/metrics"
	"github.com/grantboard/ingest-worker/pkg/queue"
)

// MessageReceiver is the consumed receive capability: a long-polled, bounded
// batch fetch that returns an empty slice when nothing is available.
type MessageReceiver interface {
	ReceiveBatch(ctx context.Context) ([]queue.Message, error)
}

// Worker drives the poll loop: receive a batch, hand it to the processor,
// repeat until the context is cancelled. The long-poll wait inside
// ReceiveBatch provides the backpressure; an empty batch just polls again.
type Worker struct {
	queue     MessageReceiver
	processor *Processor
	backoff   time.Duration
}

func NewWorker(queue MessageReceiver, processor *Processor, backoff time.Duration) *Worker {
	return &Worker{
		queue:     queue,
		processor: processor,
		backoff:   backoff,
	}
}

// Run polls until ctx is cancelled. Cancellation is observed between batches,
// so an in-flight batch always finishes before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		messages, err := w.queue.ReceiveBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Log.WithError(err).Error("Failed to receive message batch")
			select {
			case <-time.After(w.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		if len(messages) == 0 {
			continue
		}
		metrics.AddReceived(len(messages))

		// Shutdown must not abort upserts mid-batch.
		w.processor.Process(context.WithoutCancel(ctx), messages)
	}
}

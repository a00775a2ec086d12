package queue

import "context"

// Message is one raw queue delivery: an opaque body and the handle used to
// acknowledge it. A message that is never deleted becomes visible again and
// is redelivered by the queue backend.
type Message struct {
	Body          string
	ReceiptHandle string
}

// Client is the consumed queue capability. ReceiveBatch long-polls for up to
// the configured wait and returns at most the configured batch size; it
// returns an empty slice, never nil, when no messages are available.
type Client interface {
	ReceiveBatch(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

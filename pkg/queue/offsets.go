package queue

import "github.com/segmentio/kafka-go"

// offsetTracker remembers fetched-but-uncommitted messages per partition so
// a consumer-group commit never advances the watermark past an offset whose
// record was not persisted. Committing offset N acknowledges every offset
// below N too, so an offset may only be committed once every earlier fetched
// offset in its partition has been acknowledged.
type offsetTracker struct {
	parts map[int]*partitionOffsets
}

type partitionOffsets struct {
	order    []int64 // fetched offsets in fetch order
	messages map[int64]kafka.Message
	acked    map[int64]bool
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{parts: make(map[int]*partitionOffsets)}
}

func (t *offsetTracker) track(m kafka.Message) {
	p := t.parts[m.Partition]
	if p == nil {
		p = &partitionOffsets{
			messages: make(map[int64]kafka.Message),
			acked:    make(map[int64]bool),
		}
		t.parts[m.Partition] = p
	}
	// A redelivered copy keeps the original's slot.
	if _, seen := p.messages[m.Offset]; !seen {
		p.order = append(p.order, m.Offset)
	}
	p.messages[m.Offset] = m
}

// ack marks a fetched offset as persisted. It reports false for offsets this
// tracker never saw.
func (t *offsetTracker) ack(partition int, offset int64) bool {
	p := t.parts[partition]
	if p == nil {
		return false
	}
	if _, seen := p.messages[offset]; !seen {
		return false
	}
	p.acked[offset] = true
	return true
}

// commitCandidate returns the newest message of the contiguous acknowledged
// prefix of the partition, or false when the head offset is still
// unacknowledged and the watermark must hold.
func (t *offsetTracker) commitCandidate(partition int) (kafka.Message, bool) {
	p := t.parts[partition]
	if p == nil {
		return kafka.Message{}, false
	}
	var last kafka.Message
	found := false
	for _, off := range p.order {
		if !p.acked[off] {
			break
		}
		last = p.messages[off]
		found = true
	}
	return last, found
}

// markCommitted evicts every tracked offset up to and including offset.
func (t *offsetTracker) markCommitted(partition int, offset int64) {
	p := t.parts[partition]
	if p == nil {
		return
	}
	i := 0
	for i < len(p.order) && p.order[i] <= offset {
		delete(p.messages, p.order[i])
		delete(p.acked, p.order[i])
		i++
	}
	p.order = p.order[i:]
}

// outstanding counts fetched offsets not yet evicted by a commit.
func (t *offsetTracker) outstanding() int {
	n := 0
	for _, p := range t.parts {
		n += len(p.order)
	}
	return n
}

package queue

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func msg(partition int, offset int64) kafka.Message {
	return kafka.Message{Partition: partition, Offset: offset}
}

func TestOffsetTrackerHoldsCommitBehindUnackedMessage(t *testing.T) {
	tr := newOffsetTracker()
	tr.track(msg(0, 3))
	tr.track(msg(0, 4))

	// Offset 3 was skipped (not persisted); acknowledging offset 4 must not
	// produce a commit that would sweep offset 3 past the watermark.
	if !tr.ack(0, 4) {
		t.Fatal("expected ack of a fetched offset to succeed")
	}
	if _, ok := tr.commitCandidate(0); ok {
		t.Fatal("expected no commit candidate while an earlier offset is unacknowledged")
	}
}

func TestOffsetTrackerAdvancesContiguousPrefix(t *testing.T) {
	tr := newOffsetTracker()
	tr.track(msg(0, 3))
	tr.track(msg(0, 4))
	tr.track(msg(0, 5))

	tr.ack(0, 3)
	candidate, ok := tr.commitCandidate(0)
	if !ok || candidate.Offset != 3 {
		t.Fatalf("expected commit candidate at offset 3, got %v %v", candidate.Offset, ok)
	}

	tr.ack(0, 5)
	candidate, ok = tr.commitCandidate(0)
	if !ok || candidate.Offset != 3 {
		t.Fatalf("expected candidate to stay at offset 3 with 4 unacked, got %v", candidate.Offset)
	}

	tr.ack(0, 4)
	candidate, ok = tr.commitCandidate(0)
	if !ok || candidate.Offset != 5 {
		t.Fatalf("expected candidate to advance to offset 5, got %v", candidate.Offset)
	}
}

func TestOffsetTrackerEvictsCommittedEntries(t *testing.T) {
	tr := newOffsetTracker()
	tr.track(msg(0, 3))
	tr.track(msg(0, 4))
	tr.ack(0, 3)
	tr.ack(0, 4)

	candidate, ok := tr.commitCandidate(0)
	if !ok {
		t.Fatal("expected a commit candidate")
	}
	tr.markCommitted(0, candidate.Offset)

	if n := tr.outstanding(); n != 0 {
		t.Fatalf("expected no outstanding entries after commit, got %d", n)
	}
	if tr.ack(0, 3) {
		t.Fatal("expected evicted offset to be unknown")
	}
}

func TestOffsetTrackerPartitionsAreIndependent(t *testing.T) {
	tr := newOffsetTracker()
	tr.track(msg(0, 3))
	tr.track(msg(1, 7))

	tr.ack(1, 7)
	if _, ok := tr.commitCandidate(0); ok {
		t.Fatal("expected partition 0 to have no candidate")
	}
	candidate, ok := tr.commitCandidate(1)
	if !ok || candidate.Offset != 7 || candidate.Partition != 1 {
		t.Fatalf("expected partition 1 candidate at offset 7, got %+v %v", candidate, ok)
	}
}

func TestOffsetTrackerRedeliveryDoesNotDuplicate(t *testing.T) {
	tr := newOffsetTracker()
	tr.track(msg(0, 3))
	tr.track(msg(0, 3))

	if n := tr.outstanding(); n != 1 {
		t.Fatalf("expected a redelivered offset to keep one slot, got %d", n)
	}
}

func TestOffsetTrackerRejectsUnknownAck(t *testing.T) {
	tr := newOffsetTracker()
	tr.track(msg(0, 3))

	if tr.ack(0, 9) {
		t.Fatal("expected ack of an unfetched offset to fail")
	}
	if tr.ack(2, 3) {
		t.Fatal("expected ack on an unknown partition to fail")
	}
}

func TestParseHandle(t *testing.T) {
	partition, offset, err := parseHandle("2-17")
	if err != nil || partition != 2 || offset != 17 {
		t.Fatalf("expected partition 2 offset 17, got %d %d %v", partition, offset, err)
	}
	if _, _, err := parseHandle("not-a-handle"); err == nil {
		t.Fatal("expected error for malformed handle")
	}
}

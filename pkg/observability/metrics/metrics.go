package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	messagesReceived  atomic.Int64
	grantsStored      atomic.Int64
	messagesDeleted   atomic.Int64
	malformedSkipped  atomic.Int64
	unparsableSkipped atomic.Int64
	storageFailures   atomic.Int64
	deleteFailures    atomic.Int64
)

func AddReceived(n int)     { messagesReceived.Add(int64(n)) }
func IncStored()            { grantsStored.Add(1) }
func IncDeleted()           { messagesDeleted.Add(1) }
func IncMalformedSkipped()  { malformedSkipped.Add(1) }
func IncUnparsableSkipped() { unparsableSkipped.Add(1) }
func IncStorageFailure()    { storageFailures.Add(1) }
func IncDeleteFailure()     { deleteFailures.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(w, "# HELP grants_ingest_messages_received_total Messages received from the queue since start.\n")
	fmt.Fprintf(w, "# TYPE grants_ingest_messages_received_total counter\n")
	fmt.Fprintf(w, "grants_ingest_messages_received_total %d\n", messagesReceived.Load())

	fmt.Fprintf(w, "# HELP grants_ingest_grants_stored_total Grant records upserted since start.\n")
	fmt.Fprintf(w, "# TYPE grants_ingest_grants_stored_total counter\n")
	fmt.Fprintf(w, "grants_ingest_grants_stored_total %d\n", grantsStored.Load())

	fmt.Fprintf(w, "# HELP grants_ingest_messages_deleted_total Messages acknowledged after successful persistence.\n")
	fmt.Fprintf(w, "# TYPE grants_ingest_messages_deleted_total counter\n")
	fmt.Fprintf(w, "grants_ingest_messages_deleted_total %d\n", messagesDeleted.Load())

	fmt.Fprintf(w, "# HELP grants_ingest_malformed_skipped_total Messages skipped because the payload could not be parsed.\n")
	fmt.Fprintf(w, "# TYPE grants_ingest_malformed_skipped_total counter\n")
	fmt.Fprintf(w, "grants_ingest_malformed_skipped_total %d\n", malformedSkipped.Load())

	fmt.Fprintf(w, "# HELP grants_ingest_unparsable_date_skipped_total Messages skipped because the post date was not canonical.\n")
	fmt.Fprintf(w, "# TYPE grants_ingest_unparsable_date_skipped_total counter\n")
	fmt.Fprintf(w, "grants_ingest_unparsable_date_skipped_total %d\n", unparsableSkipped.Load())

	fmt.Fprintf(w, "# HELP grants_ingest_storage_failures_total Upsert attempts that failed; the message stays queued.\n")
	fmt.Fprintf(w, "# TYPE grants_ingest_storage_failures_total counter\n")
	fmt.Fprintf(w, "grants_ingest_storage_failures_total %d\n", storageFailures.Load())

	fmt.Fprintf(w, "# HELP grants_ingest_delete_failures_total Acknowledgements that failed after the record was stored.\n")
	fmt.Fprintf(w, "# TYPE grants_ingest_delete_failures_total counter\n")
	fmt.Fprintf(w, "grants_ingest_delete_failures_total %d\n", deleteFailures.Load())
}

package ingest

import "errors"

// Reason classifies why a message could not be transformed into a grant
// record. The batch processor reacts to every reason the same way (skip the
// message, leave it in the queue for redelivery); the reason exists for
// logging and metrics.
type Reason string

const (
	ReasonMalformedPayload Reason = "malformed_payload"
	ReasonMissingGrantID   Reason = "missing_grant_id"
	ReasonUnparsableDate   Reason = "unparsable_date"
)

type TransformError struct {
	Reason Reason
	Err    error
}

func (e TransformError) Error() string {
	return string(e.Reason) + ": " + e.Err.Error()
}

func (e TransformError) Unwrap() error {
	return e.Err
}

// ClassifyTransformError returns the reason carried by err, or false when err
// did not originate in the transformer.
func ClassifyTransformError(err error) (Reason, bool) {
	var te TransformError
	if errors.As(err, &te) {
		return te.Reason, true
	}
	return "", false
}

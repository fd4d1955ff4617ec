package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the processing pipeline.
var (
	ErrDocumentUnreadable = errors.New("document unreadable")
	ErrRoutingExhausted   = errors.New("no strategy bound for routing decision")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendRejected    = errors.New("backend rejected request")
	ErrNoResult           = errors.New("no result received from processing")
	ErrNotProcessed       = errors.New("document has not been processed")
	ErrInvalidRequest     = errors.New("invalid request")
)

// ProcessingError is the single error kind returned to callers of the
// pipeline. Reason is the same text recorded in the Failed stage.
type ProcessingError struct {
	DocumentID string
	Reason     string
	Err        error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s failed: %s", e.DocumentID, e.Reason)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

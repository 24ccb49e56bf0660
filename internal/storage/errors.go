package storage

import "fmt"

// UploadValidationError reports input problems detected locally, before any
// network call: a missing/empty payload or one over the hard size cap.
// Handlers map it to HTTP 400.
type UploadValidationError struct {
	Reason string
}

func (e *UploadValidationError) Error() string { return e.Reason }

// UploadServerError reports a transport or backend failure while talking to
// the object store. Handlers map it to HTTP 500.
type UploadServerError struct {
	Op  string
	Err error
}

func (e *UploadServerError) Error() string {
	return fmt.Sprintf("object store %s failed: %v", e.Op, e.Err)
}

func (e *UploadServerError) Unwrap() error { return e.Err }

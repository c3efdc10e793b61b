package submit

import "errors"

var (
	// ErrInFlight rejects a submit while an earlier one is still pending.
	ErrInFlight = errors.New("upload already in progress")
	// ErrUploadFailed is what the user sees for any transport or server failure.
	ErrUploadFailed = errors.New("upload failed")
	ErrClosed       = errors.New("submission closed")
)

// ValidationError blocks a submission before anything is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

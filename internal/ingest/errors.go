package ingest

import (
	"errors"
	"net/http"
)

// ConfigurationError means the server cannot reach its blob container. It
// is fatal for the request and its message is returned to the caller as is.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// BadRequestError is returned for input the client has to fix.
type BadRequestError struct {
	Message     string
	ContentType *string
}

func (e *BadRequestError) Error() string { return e.Message }

// StorageError wraps a failed container operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func StatusCode(err error) int {
	var badRequest *BadRequestError
	if errors.As(err, &badRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// PublicMessage is the error text that is safe to put on the wire.
func PublicMessage(err error) string {
	var (
		configErr  *ConfigurationError
		badRequest *BadRequestError
		storageErr *StorageError
	)
	switch {
	case errors.As(err, &configErr):
		return configErr.Message
	case errors.As(err, &badRequest):
		return badRequest.Message
	case errors.As(err, &storageErr):
		return "Failed to store file"
	}
	return "Internal server error"
}

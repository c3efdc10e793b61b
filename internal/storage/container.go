// Package storage holds the blob container that ingested screenshots are
// written into, together with its minio and in-memory implementations.
package storage

import (
	"context"
	"errors"
)

var ErrContainerNotFound = errors.New("container does not exist")

// Container is a single object-storage container (an S3 bucket).
type Container interface {
	// CreateIfNotExists provisions the container. It succeeds when the
	// container already exists, including when a concurrent caller won the race.
	CreateIfNotExists(ctx context.Context) error
	// Put writes data under name with the given content type and metadata.
	Put(ctx context.Context, name string, data []byte, contentType string, metadata map[string]string) error
	// Name reports the container name.
	Name() string
}

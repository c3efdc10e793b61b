package storage

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/singleflight"
)

const createTimeout = 30 * time.Second

// ObjectStore is a Container backed by an S3-compatible bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	region string

	ready atomic.Bool
	group singleflight.Group
}

func NewObjectStore(target Target, bucket string) (*ObjectStore, error) {
	client, err := minio.New(target.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(target.AccessKey, target.SecretKey, ""),
		Secure: target.UseSSL,
		Region: target.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		bucket: bucket,
		region: target.Region,
	}, nil
}

func (s *ObjectStore) Name() string {
	return s.bucket
}

// CreateIfNotExists makes sure the bucket exists. Concurrent callers share
// one round trip, which runs detached from any single caller's context;
// each caller still stops waiting when its own ctx is done.
func (s *ObjectStore) CreateIfNotExists(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	ch := s.group.DoChan(s.bucket, func() (any, error) {
		if s.ready.Load() {
			return nil, nil
		}
		createCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), createTimeout)
		defer cancel()

		exists, err := s.client.BucketExists(createCtx, s.bucket)
		if err != nil {
			return nil, fmt.Errorf("bucket exists %s: %w", s.bucket, err)
		}
		if !exists {
			err := s.client.MakeBucket(createCtx, s.bucket, minio.MakeBucketOptions{Region: s.region})
			if err != nil && !isAlreadyExists(err) {
				return nil, fmt.Errorf("create bucket %s: %w", s.bucket, err)
			}
		}
		s.ready.Store(true)
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ObjectStore) Put(ctx context.Context, name string, data []byte, contentType string, metadata map[string]string) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", name, err)
	}
	return nil
}

// Ping checks that the endpoint answers for the bucket.
func (s *ObjectStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

// isAlreadyExists reports the S3 errors returned when another caller
// created the bucket between our existence check and MakeBucket.
func isAlreadyExists(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return true
	}
	return false
}

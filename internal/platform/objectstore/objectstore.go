// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
Package objectstore provides the blob storage layer for certificate files.

It wraps a MinIO / S3-compatible client behind a small domain-facing interface
so services never touch the vendor SDK directly.

Architecture:

  - BlobStore: Contract consumed by the records service.
  - MinioStore: Production implementation (bucket ensured at startup).
  - Progress: Byte-level upload progress is surfaced through a counting
    reader as a side channel; completion is signalled only by Put returning.

Uploads are fire-and-forget from the caller's perspective: there is no retry
and no cleanup of partially written objects. A failed Put may leave an
orphaned partial blob behind; the metadata record is only created after Put
returns nil, so orphans are never visible to readers.
*/
package objectstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ProgressFunc receives fractional-completion events during an upload.
//
// It is invoked with the cumulative bytes transferred and the total size.
// Implementations must be fast and must not block: they run on the upload
// path. A nil ProgressFunc disables the side channel.
type ProgressFunc func(bytesTransferred, totalBytes int64)

// # Contracts

// BlobStore defines the blob storage contract for the portal.
type BlobStore interface {

	/*
		Put streams an object into the bucket under the given key.

		Parameters:
		  - context: context.Context
		  - key: string (Full object key, e.g. students/{uid}/certificates/{name})
		  - reader: io.Reader (Object content)
		  - size: int64 (Total content length in bytes)
		  - contentType: string
		  - progress: ProgressFunc (Optional side channel, may be nil)

		Returns:
		  - error: Transport or bucket failures
	*/
	Put(context context.Context, key string, reader io.Reader, size int64, contentType string, progress ProgressFunc) error

	/*
		PresignGet issues a time-limited public download URL for an object.

		Parameters:
		  - context: context.Context
		  - key: string
		  - expiry: time.Duration

		Returns:
		  - string: Presigned URL
		  - error: Signing failures
	*/
	PresignGet(context context.Context, key string, expiry time.Duration) (string, error)
}

// # MinIO Implementation

// MinioStore implements [BlobStore] for MinIO/S3 compatible storage.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
//
// # Parameters
//   - endpoint: Host:port of the object storage service.
//   - accessKey, secretKey: Static credentials.
//   - bucket: Target bucket, created when absent.
//   - useSSL: Whether to use TLS for the connection.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to init client: %w", err)
	}

	ensureCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ensureCtx, bucket)
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ensureCtx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("objectstore: failed to create bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

/*
Put streams an object into the bucket, reporting progress as it reads.

Description: The reader is wrapped in a counting reader so the caller
observes bytesTransferred/totalBytes events without the SDK knowing about
the side channel.

Parameters:
  - context: context.Context
  - key: string
  - reader: io.Reader
  - size: int64
  - contentType: string
  - progress: ProgressFunc (may be nil)

Returns:
  - error: Transport failures
*/
func (store *MinioStore) Put(context context.Context, key string, reader io.Reader, size int64, contentType string, progress ProgressFunc) error {
	source := reader
	if progress != nil {
		source = NewProgressReader(reader, size, progress)
	}

	_, err := store.client.PutObject(context, store.bucket, key, source, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("objectstore: put failed: %w", err)
	}

	return nil
}

/*
PresignGet issues a presigned GET URL for the object.

Parameters:
  - context: context.Context
  - key: string
  - expiry: time.Duration

Returns:
  - string: Time-limited download URL
  - error: Signing failures
*/
func (store *MinioStore) PresignGet(context context.Context, key string, expiry time.Duration) (string, error) {
	signedURL, err := store.client.PresignedGetObject(context, store.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("objectstore: presign failed: %w", err)
	}
	return signedURL.String(), nil
}

// Healthy reports whether the bucket is reachable. Used by readiness probes.
func (store *MinioStore) Healthy(context context.Context) error {
	exists, err := store.client.BucketExists(context, store.bucket)
	if err != nil {
		return fmt.Errorf("objectstore: health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("objectstore: bucket %q is missing", store.bucket)
	}
	return nil
}

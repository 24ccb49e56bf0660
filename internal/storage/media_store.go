package storage

// Package storage is the media storage gateway: it uploads and deletes
// image blobs in an S3-compatible object store and maps between storage
// refs ("s3://bucket/key", what storage operations use) and public URLs
// (what persisted rows carry). Validation failures are distinguished from
// backend failures so callers can pick the right user-facing status code.

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// maxObjectSize is the gateway's hard cap. The domain services enforce the
// much smaller per-image limit; this one only guards the transport.
const maxObjectSize = 2 << 30 // 2 GiB

// MediaStore wraps a MinIO client for wardrobe image storage.
type MediaStore struct {
	URLMapper
	client *minio.Client
	bucket string
}

// Options configures a MediaStore.
type Options struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	CDNEnabled bool
	CDNDomain  string
}

// New connects to the object store and ensures the bucket exists.
func New(ctx context.Context, opts Options) (*MediaStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("object store bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("object store make bucket: %w", err)
		}
	}

	return &MediaStore{
		URLMapper: NewURLMapper(opts.Bucket, opts.CDNEnabled, opts.CDNDomain),
		client:    client,
		bucket:    opts.Bucket,
	}, nil
}

// Put stores the bytes under the given key and returns the storage ref.
// Missing input and oversized payloads fail as UploadValidationError before
// any network call; everything else that fails is an UploadServerError.
func (s *MediaStore) Put(ctx context.Context, data []byte, contentType, key string) (string, error) {
	if len(data) == 0 {
		return "", &UploadValidationError{Reason: "input image file is missing but required"}
	}
	if len(data) > maxObjectSize {
		return "", &UploadValidationError{Reason: "input image size is larger than supported size of 2 GiB"}
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", &UploadServerError{Op: "put", Err: err}
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Delete removes the blob behind a storage ref or public URL. Deleting a
// nonexistent object succeeds; callers treat delete as idempotent.
func (s *MediaStore) Delete(ctx context.Context, ref string) error {
	key, ok := s.keyFromRef(s.ToStorageRef(ref))
	if !ok {
		return &UploadValidationError{Reason: "unrecognized storage reference: " + ref}
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return &UploadServerError{Op: "delete", Err: err}
	}
	return nil
}

// Cleanup deletes blobs best-effort. Failures are logged and swallowed so
// compensation never masks the error that triggered it. Empty refs are
// ignored, which lets callers pass through whatever subset of uploads
// actually succeeded.
func (s *MediaStore) Cleanup(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := s.Delete(ctx, ref); err != nil {
			log.Printf("storage: cleanup of %s failed: %v", ref, err)
		}
	}
}

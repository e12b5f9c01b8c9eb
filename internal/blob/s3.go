package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the settings for an S3-compatible storage provider.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Secure    bool
}

// S3 is a Backend storing images in an S3-compatible object store.
type S3 struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3 creates an S3 backend for the given configuration.
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 endpoint and bucket must be configured")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (s *S3) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %q: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *S3) Put(ctx context.Context, name string, data []byte) (Object, error) {
	ext := path.Ext(name)
	if ext == "" {
		ext = ".png"
	}
	key := path.Join(s.prefix, uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/png",
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload object %q: %w", key, err)
	}

	return Object{
		URL: fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, key),
		Key: key,
	}, nil
}

func (s *S3) Delete(ctx context.Context, obj Object) error {
	if obj.Key == "" {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", obj.Key, err)
	}
	return nil
}

func (s *S3) Resolve(ctx context.Context, obj Object) (retData []byte, retErr error) {
	r, err := s.client.GetObject(ctx, s.bucket, obj.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", obj.Key, err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		// GetObject defers provider errors until the first read.
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("read object %q: %w", obj.Key, ErrNotExist)
		}
		return nil, fmt.Errorf("read object %q: %w", obj.Key, err)
	}
	return data, nil
}

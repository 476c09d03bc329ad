package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"

	"github.com/wonny/cohesion/pkg/config"
)

// GCSSource reads feeds from a Google Cloud Storage bucket.
// Credentials come from Application Default Credentials.
type GCSSource struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCSSource creates a GCS-backed source
func NewGCSSource(ctx context.Context, cfg config.GCSConfig) (*GCSSource, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("FEEDS_GCS_BUCKET is required for the gcs source")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSSource{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Open streams prefix+name from the bucket
func (s *GCSSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := objectKey(s.prefix, name)
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", key, err)
	}
	return r, nil
}

func (s *GCSSource) String() string {
	return "gs://" + s.bucket + "/" + s.prefix
}

// objectKey joins a bucket prefix and a feed name with exactly one slash
func objectKey(prefix, name string) string {
	name = strings.TrimLeft(name, "/")
	if prefix == "" {
		return name
	}
	return strings.TrimRight(prefix, "/") + "/" + name
}

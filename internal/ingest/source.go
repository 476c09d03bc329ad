package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/cohesion/pkg/config"
	"github.com/wonny/cohesion/pkg/httputil"
	"github.com/wonny/cohesion/pkg/logger"
)

// Source opens named feed files
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	String() string
}

// Source kinds accepted by NewSource
const (
	SourceLocal = "local"
	SourceHTTP  = "http"
	SourceS3    = "s3"
	SourceGCS   = "gcs"
)

// NewSource builds the source of the given kind from config.
// An empty kind picks the first configured remote source, else local.
func NewSource(ctx context.Context, kind string, cfg *config.Config, log *logger.Logger) (Source, error) {
	if kind == "" {
		switch {
		case cfg.Feeds.S3.Bucket != "":
			kind = SourceS3
		case cfg.Feeds.GCS.Bucket != "":
			kind = SourceGCS
		case cfg.Feeds.BaseURL != "":
			kind = SourceHTTP
		default:
			kind = SourceLocal
		}
	}

	switch kind {
	case SourceLocal:
		return NewLocalSource(cfg.Feeds.Dir), nil
	case SourceHTTP:
		if cfg.Feeds.BaseURL == "" {
			return nil, fmt.Errorf("FEEDS_BASE_URL is required for the http source")
		}
		return NewHTTPSource(cfg.Feeds.BaseURL, httputil.New(cfg, log)), nil
	case SourceS3:
		return NewS3Source(ctx, cfg.Feeds.S3)
	case SourceGCS:
		return NewGCSSource(ctx, cfg.Feeds.GCS)
	default:
		return nil, fmt.Errorf("unknown feed source %q (want local, http, s3 or gcs)", kind)
	}
}

// LocalSource reads feeds from a directory
type LocalSource struct {
	dir string
}

// NewLocalSource creates a directory-backed source
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// Open opens dir/name
func (s *LocalSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.FromSlash(name)))
	if err != nil {
		return nil, fmt.Errorf("open feed %s: %w", name, err)
	}
	return f, nil
}

func (s *LocalSource) String() string {
	return "local:" + s.dir
}

// HTTPSource downloads feeds below a base URL
type HTTPSource struct {
	baseURL string
	client  *httputil.Client
}

// NewHTTPSource creates a source reading baseURL/name through the
// retrying, rate-limited client
func NewHTTPSource(baseURL string, client *httputil.Client) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Open downloads baseURL/name
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	body, err := s.client.Open(ctx, s.baseURL+"/"+strings.TrimLeft(name, "/"))
	if err != nil {
		return nil, fmt.Errorf("download feed %s: %w", name, err)
	}
	return body, nil
}

func (s *HTTPSource) String() string {
	return s.baseURL
}

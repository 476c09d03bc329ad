package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/pkg/config"
	"github.com/wonny/cohesion/pkg/httputil"
	"github.com/wonny/cohesion/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Feeds: config.FeedsConfig{Dir: "data", RequestsPerSecond: 100},
	}
}

func TestHTTPSource_Open(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feeds/games_2023.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := httputil.New(testConfig(), logger.Nop()).DisableRetry()
	src := NewHTTPSource(srv.URL+"/feeds/", client)

	rc, err := src.Open(context.Background(), "games_2023.csv")
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, string(body))

	_, err = src.Open(context.Background(), "missing.csv")
	require.Error(t, err)
	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestNewSource(t *testing.T) {
	ctx := context.Background()

	src, err := NewSource(ctx, "", testConfig(), logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LocalSource{}, src)

	cfg := testConfig()
	cfg.Feeds.BaseURL = "https://feeds.example.com"
	src, err = NewSource(ctx, "", cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	_, err = NewSource(ctx, SourceHTTP, testConfig(), logger.Nop())
	assert.Error(t, err)

	_, err = NewSource(ctx, SourceS3, testConfig(), logger.Nop())
	assert.Error(t, err)

	_, err = NewSource(ctx, "ftp", testConfig(), logger.Nop())
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "plays.csv", objectKey("", "/plays.csv"))
	assert.Equal(t, "nfl/plays.csv", objectKey("nfl/", "plays.csv"))
	assert.Equal(t, "nfl/plays.csv", objectKey("nfl", "plays.csv"))
}

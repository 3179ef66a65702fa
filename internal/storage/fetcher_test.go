package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherStreamsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 resume"))
	}))
	defer srv.Close()

	blob, err := NewHTTPFetcher(0).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	defer blob.Body.Close()

	body, err := io.ReadAll(blob.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 resume", string(body))
	assert.Equal(t, "application/pdf", blob.ContentType)
	assert.Equal(t, int64(len(body)), blob.ContentLength)
}

func TestHTTPFetcherFailsOnUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(0).Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "403")
}

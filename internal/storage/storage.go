package storage

import (
	"context"
	"io"
	"time"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

// Signer issues short-lived URLs. SignedGetURL returns utils.ErrNotFound when the
// object does not exist.
type Signer interface {
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
	SignedPutURL(ctx context.Context, objectName, contentType string, ttl time.Duration) (string, error)
}

// Blob is a streamed object body with the headers to forward.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Fetcher retrieves bytes behind a signed URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Blob, error)
}

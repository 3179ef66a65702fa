package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

type HTTPFetcher struct {
	client *resty.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPFetcher{client: resty.New().SetTimeout(timeout)}
}

// Fetch streams the response body; the caller must close Blob.Body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Blob, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, err
	}

	raw := resp.RawBody()
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		if raw != nil {
			_ = raw.Close()
		}
		return nil, fmt.Errorf("fetch blob: upstream status %d", resp.StatusCode())
	}

	length := int64(-1)
	if v := resp.Header().Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			length = n
		}
	}
	ct := resp.Header().Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}

	return &Blob{Body: raw, ContentType: ct, ContentLength: length}, nil
}

package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/xpttools/xpt/pkg/types"
)

// HTTPFetcher downloads http:// and https:// URLs, retrying transient
// failures.
type HTTPFetcher struct {
	client  *retryablehttp.Client
	MaxSize int64
}

// NewHTTPFetcher creates an HTTP fetcher. Retries are logged at debug level
// through logger when it is non-nil.
func NewHTTPFetcher(logger *slog.Logger, retries int) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil // the default logs every attempt to stderr
	if logger != nil {
		client.Logger = logger
	}
	return &HTTPFetcher{client: client, MaxSize: DefaultMaxSize}
}

// NewHTTPFetcherWithClient creates a fetcher using a custom HTTP client (for testing).
func NewHTTPFetcherWithClient(httpClient *http.Client, retries int) *HTTPFetcher {
	f := NewHTTPFetcher(nil, retries)
	f.client.HTTPClient = httpClient
	f.client.RetryWaitMin = time.Millisecond
	f.client.RetryWaitMax = 10 * time.Millisecond
	return f
}

// Name returns the fetcher name.
func (f *HTTPFetcher) Name() string {
	return "http"
}

// CanFetch returns true for http and https URLs.
func (f *HTTPFetcher) CanFetch(location string) bool {
	s := scheme(location)
	return s == "http" || s == "https"
}

// Fetch performs a GET request and returns the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) (*Object, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", location, resp.Status)
	}

	data, err := readLimited(resp.Body, f.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return &Object{Content: data, Provenance: types.RemoteProvenance{URL: location}}, nil
}

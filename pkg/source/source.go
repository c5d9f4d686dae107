// Package source fetches transport files from local paths, HTTP(S) URLs,
// S3 buckets and Azure Blob Storage containers.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xpttools/xpt/pkg/types"
)

// DefaultMaxSize bounds how many bytes a fetcher reads from one location.
const DefaultMaxSize int64 = 4 << 30

// ErrTooLarge is returned when a location holds more than the size limit.
var ErrTooLarge = errors.New("object exceeds size limit")

// Object is the fetched content of one location.
type Object struct {
	Content    []byte
	Provenance types.Provenance
}

// Fetcher retrieves transport files from one kind of location.
type Fetcher interface {
	// Name returns a human-readable name for this fetcher.
	Name() string

	// CanFetch returns true if this fetcher handles the given location.
	CanFetch(location string) bool

	// Fetch reads the object at location.
	Fetch(ctx context.Context, location string) (*Object, error)
}

// scheme returns the lower-case URL scheme of location, or "" for plain paths.
func scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(location[:i])
}

// splitBucketKey splits "bucket/key/with/slashes" into its two parts.
func splitBucketKey(rest string) (string, string, error) {
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("expected <bucket>/<key>, got %q", rest)
	}
	return bucket, key, nil
}

// readLimited reads r up to max bytes and fails when more remain.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, max)
	}
	return data, nil
}

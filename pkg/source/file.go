package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xpttools/xpt/pkg/types"
)

// FileFetcher reads local paths and file:// URLs.
type FileFetcher struct {
	MaxSize int64
}

// NewFileFetcher creates a local file fetcher.
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{MaxSize: DefaultMaxSize}
}

// Name returns the fetcher name.
func (f *FileFetcher) Name() string {
	return "file"
}

// CanFetch returns true for plain paths and file:// URLs.
func (f *FileFetcher) CanFetch(location string) bool {
	s := scheme(location)
	return s == "" || s == "file"
}

// Fetch reads the file.
func (f *FileFetcher) Fetch(ctx context.Context, location string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := location
	if scheme(location) == "file" {
		path = strings.TrimPrefix(location[len("file://"):], "localhost")
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fh.Close()

	data, err := readLimited(fh, f.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Object{Content: data, Provenance: types.FileProvenance{FilePath: path}}, nil
}

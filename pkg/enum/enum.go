// Package enum discovers transport files to decode: in directory trees,
// and inside zip and 7z archives.
package enum

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/xpttools/xpt/pkg/types"
)

// Callback receives the raw bytes of one transport file, its content id and
// where it was found.
type Callback = func(content []byte, blobID types.BlobID, prov types.Provenance) error

// Enumerator discovers transport files from a source.
type Enumerator interface {
	// Enumerate yields every transport file found in the source.
	Enumerate(ctx context.Context, callback Callback) error
}

// DefaultExtensions are the file extensions treated as transport files.
var DefaultExtensions = []string{".xpt", ".xport"}

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links.
	FollowSymlinks bool

	// Extensions overrides DefaultExtensions.
	Extensions []string

	// ExtractArchives opens .zip and .7z files and yields their transport file members.
	ExtractArchives bool

	// ExtractLimits bounds archive extraction.
	ExtractLimits ExtractLimits
}

func (c Config) extensions() []string {
	if len(c.Extensions) == 0 {
		return DefaultExtensions
	}
	return c.Extensions
}

// IsTransportFile reports whether name carries one of the configured extensions.
func (c Config) IsTransportFile(name string) bool {
	ext := getExtension(name)
	for _, e := range c.extensions() {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// getExtension returns the lower-case extension of path, including the dot.
func getExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

package enum

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ErrLimitExceeded is returned when an archive exceeds ExtractLimits.
var ErrLimitExceeded = errors.New("archive extraction limit exceeded")

// ExtractLimits bounds how much an archive may expand to.
type ExtractLimits struct {
	MaxMembers    int   // transport files taken from one archive (0 = 1024)
	MaxMemberSize int64 // uncompressed bytes of one member (0 = 1 GiB)
	MaxTotalSize  int64 // uncompressed bytes of all members (0 = 4 GiB)
}

// DefaultExtractLimits returns the limits used when none are configured.
func DefaultExtractLimits() ExtractLimits {
	return ExtractLimits{
		MaxMembers:    1024,
		MaxMemberSize: 1 << 30,
		MaxTotalSize:  4 << 30,
	}
}

func (l ExtractLimits) withDefaults() ExtractLimits {
	d := DefaultExtractLimits()
	if l.MaxMembers <= 0 {
		l.MaxMembers = d.MaxMembers
	}
	if l.MaxMemberSize <= 0 {
		l.MaxMemberSize = d.MaxMemberSize
	}
	if l.MaxTotalSize <= 0 {
		l.MaxTotalSize = d.MaxTotalSize
	}
	return l
}

// ExtractedContent is one transport file taken out of an archive.
type ExtractedContent struct {
	Name    string // path within the archive (e.g., "sdtm/dm.xpt")
	Content []byte
}

// isArchive reports whether path names a supported archive.
func isArchive(path string) bool {
	switch getExtension(path) {
	case ".zip", ".7z":
		return true
	}
	return false
}

// archiveMember abstracts zip.File and sevenzip.File.
type archiveMember struct {
	name  string
	size  uint64
	isDir bool
	open  func() (io.ReadCloser, error)
}

// ExtractTransportFiles returns the members of a zip or 7z archive whose
// names carry a transport file extension.
func ExtractTransportFiles(path string, content []byte, cfg Config) ([]ExtractedContent, error) {
	var members []archiveMember

	switch getExtension(path) {
	case ".zip":
		zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
		if err != nil {
			return nil, fmt.Errorf("failed to open zip: %w", err)
		}
		for _, f := range zr.File {
			members = append(members, archiveMember{
				name:  f.Name,
				size:  f.UncompressedSize64,
				isDir: f.FileInfo().IsDir(),
				open:  f.Open,
			})
		}
	case ".7z":
		sr, err := sevenzip.NewReader(bytes.NewReader(content), int64(len(content)))
		if err != nil {
			return nil, fmt.Errorf("failed to open 7z: %w", err)
		}
		for _, f := range sr.File {
			members = append(members, archiveMember{
				name:  f.Name,
				size:  f.UncompressedSize,
				isDir: f.FileInfo().IsDir(),
				open:  f.Open,
			})
		}
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", getExtension(path))
	}

	return extractMembers(members, cfg)
}

func extractMembers(members []archiveMember, cfg Config) ([]ExtractedContent, error) {
	limits := cfg.ExtractLimits.withDefaults()

	var results []ExtractedContent
	var total int64
	for _, m := range members {
		if m.isDir || !cfg.IsTransportFile(m.name) {
			continue
		}
		if !cfg.IncludeHidden && hasHiddenElement(m.name) {
			continue
		}
		if len(results) >= limits.MaxMembers {
			return results, fmt.Errorf("%w: more than %d transport files", ErrLimitExceeded, limits.MaxMembers)
		}
		if m.size > uint64(limits.MaxMemberSize) {
			return results, fmt.Errorf("%w: %s is %d bytes", ErrLimitExceeded, m.name, m.size)
		}

		data, err := readMember(m, limits.MaxMemberSize)
		if err != nil {
			return results, fmt.Errorf("reading %s: %w", m.name, err)
		}
		total += int64(len(data))
		if total > limits.MaxTotalSize {
			return results, fmt.Errorf("%w: more than %d bytes in total", ErrLimitExceeded, limits.MaxTotalSize)
		}
		results = append(results, ExtractedContent{Name: m.name, Content: data})
	}
	return results, nil
}

// readMember reads at most max bytes; a member that is longer than it
// claims is rejected.
func readMember(m archiveMember, max int64) ([]byte, error) {
	rc, err := m.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: member larger than %d bytes", ErrLimitExceeded, max)
	}
	return data, nil
}

// hasHiddenElement reports whether any element of an archive path is hidden,
// e.g. "__MACOSX/._dm.xpt".
func hasHiddenElement(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if isHidden(part) || part == "__MACOSX" {
			return true
		}
	}
	return false
}

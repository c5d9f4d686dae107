package types

import "fmt"

// Provenance tracks where a transport file was found.
type Provenance interface {
	Kind() string
	// Path returns displayable path (if applicable)
	Path() string
}

// FileProvenance for filesystem files.
type FileProvenance struct {
	FilePath string
}

// Kind returns "file".
func (f FileProvenance) Kind() string {
	return "file"
}

// Path returns the file path.
func (f FileProvenance) Path() string {
	return f.FilePath
}

// ArchiveProvenance tracks transport files extracted from zip or 7z archives.
type ArchiveProvenance struct {
	ArchivePath string // path to the archive
	MemberPath  string // path within the archive, e.g. "sdtm/dm.xpt"
}

// Kind returns "archive".
func (a ArchiveProvenance) Kind() string {
	return "archive"
}

// Path returns the archive path with member path.
func (a ArchiveProvenance) Path() string {
	return fmt.Sprintf("%s:%s", a.ArchivePath, a.MemberPath)
}

// RemoteProvenance for files fetched over HTTP or from object storage.
type RemoteProvenance struct {
	URL string // http(s)://, s3:// or azblob:// location
}

// Kind returns "remote".
func (r RemoteProvenance) Kind() string {
	return "remote"
}

// Path returns the URL.
func (r RemoteProvenance) Path() string {
	return r.URL
}

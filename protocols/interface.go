package protocols

import (
	"io"
	"time"
)

// Attribute flags reported by a volume for a listing result.
const (
	AttrNone      uint32 = 0
	AttrDirectory uint32 = 1 << 0
	AttrHidden    uint32 = 1 << 8
	AttrArchive   uint32 = 1 << 16
	AttrReadOnly  uint32 = 1 << 24
)

type FileEntry struct {
	Name       string
	Size       int64
	ModTime    time.Time
	IsDir      bool
	Attributes uint32
	Path       string // volume-rooted path
}

// DirLister reads a directory listing page by page.
type DirLister interface {
	// Next returns up to n entries. It returns io.EOF once the listing is drained.
	Next(n int) ([]FileEntry, error)
	Close() error
}

// Volume is a mounted storage volume addressed by absolute, slash-separated paths.
type Volume interface {
	Name() string
	OpenDir(path string) (DirLister, error)
	Stat(path string) (*FileEntry, error)
	Open(path string) (io.ReadCloser, error)
	// Create opens path for writing, truncating an existing file.
	Create(path string) (io.WriteCloser, error)
	Remove(path string) error
	Mkdir(path string) error
	RemoveAll(path string) error
	// Commit flushes pending writes on volumes that journal them.
	Commit() error
	Close() error
}

// sliceLister pages over a listing that the backend already fetched in one call.
type sliceLister struct {
	entries []FileEntry
	pos     int
}

func newSliceLister(entries []FileEntry) *sliceLister {
	return &sliceLister{entries: entries}
}

func (l *sliceLister) Next(n int) ([]FileEntry, error) {
	if l.pos >= len(l.entries) {
		return nil, io.EOF
	}
	if n <= 0 {
		n = 1
	}
	end := l.pos + n
	if end > len(l.entries) {
		end = len(l.entries)
	}
	page := l.entries[l.pos:end]
	l.pos = end
	return page, nil
}

func (l *sliceLister) Close() error {
	l.entries = nil
	return nil
}

func attributesFor(isDir bool) uint32 {
	if isDir {
		return AttrDirectory
	}
	return AttrNone
}

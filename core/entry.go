package core

import (
	"errors"
	"fmt"
	"io"
	"time"

	"dualpane/logging"
	"dualpane/protocols"
)

// listPageSize is how many listing results Scan asks the volume for per call.
const listPageSize = 32

// Entry is one file or directory of a listing. A scanned directory owns its
// Children; there is no parent pointer, the parent is derived from the path.
type Entry struct {
	// Name is the base name for listed entries and the directory path for
	// the root returned by Scan.
	Name            string
	Attributes      uint32
	Size            int64
	ModTime         time.Time
	IsDirectory     bool
	IsRealDirectory bool
	IsRootDirectory bool
	Children        []*Entry
}

// Count returns the number of children.
func (e *Entry) Count() int {
	if e == nil {
		return 0
	}
	return len(e.Children)
}

// IsVirtual reports whether e is a synthetic navigation entry.
func (e *Entry) IsVirtual() bool {
	return e.IsDirectory && !e.IsRealDirectory
}

func newEntry(fe protocols.FileEntry) *Entry {
	isDir := fe.IsDir || fe.Attributes&protocols.AttrDirectory != 0
	attrs := fe.Attributes
	if isDir {
		attrs |= protocols.AttrDirectory
	}
	return &Entry{
		Name:            fe.Name,
		Attributes:      attrs,
		Size:            fe.Size,
		ModTime:         fe.ModTime,
		IsDirectory:     isDir,
		IsRealDirectory: true,
	}
}

// sortsBefore is the listing order: directories first, then byte-wise name.
func sortsBefore(a, b *Entry) bool {
	if a.IsDirectory != b.IsDirectory {
		return a.IsDirectory
	}
	return a.Name < b.Name
}

// insert places child at the first position whose entry sorts after it, so
// equal names keep their arrival order.
func (e *Entry) insert(child *Entry) {
	for i, cur := range e.Children {
		if sortsBefore(child, cur) {
			e.Children = append(e.Children, nil)
			copy(e.Children[i+1:], e.Children[i:])
			e.Children[i] = child
			return
		}
	}
	e.Children = append(e.Children, child)
}

// Scan lists path on vol into a new tree. With recursive set, every
// sub-directory is scanned as well.
func Scan(vol protocols.Volume, path string, recursive bool) (*Entry, error) {
	root := &Entry{
		Name:            path,
		Attributes:      protocols.AttrDirectory,
		IsDirectory:     true,
		IsRealDirectory: true,
		IsRootDirectory: IsVolumeRoot(path),
	}
	if err := scanInto(root, vol, path, recursive); err != nil {
		return nil, err
	}
	return root, nil
}

func scanInto(dir *Entry, vol protocols.Volume, path string, recursive bool) error {
	logging.Debug("scan dir", logging.String("volume", vol.Name()), logging.String("path", path))

	lister, err := vol.OpenDir(path)
	if err != nil {
		return fmt.Errorf("open dir %s: %w: %w", path, ErrStorageUnavailable, err)
	}
	defer lister.Close()

	for {
		page, err := lister.Next(listPageSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("list %s: %w", path, err)
		}
		for _, fe := range page {
			if fe.Name == "" || fe.Name == "." || fe.Name == ".." {
				continue
			}
			entry := newEntry(fe)
			if recursive && entry.IsDirectory {
				sub, err := GotoSubDir(path, entry.Name)
				if err != nil {
					return err
				}
				if err := scanInto(entry, vol, sub, recursive); err != nil {
					return err
				}
			}
			dir.insert(entry)
		}
	}

	if dir.Count() == 0 {
		logging.Debug("empty folder", logging.String("path", path))
	}
	return nil
}

// FreeDir releases every descendant of dir and empties its listing.
func FreeDir(dir *Entry) {
	if dir == nil {
		return
	}
	for _, child := range dir.Children {
		if child.Count() > 0 {
			FreeDir(child)
		}
	}
	clear(dir.Children)
	dir.Children = nil
}

// AddParentDir prepends the synthetic ".." entry, or "/" when dir is the
// volume root. It reports false and adds nothing when a synthetic entry
// already heads the listing.
func AddParentDir(dir *Entry) bool {
	if dir.Count() > 0 && dir.Children[0].IsVirtual() {
		return false
	}
	dir.IsRootDirectory = IsVolumeRoot(dir.Name)

	virtual := &Entry{
		Name:            "..",
		Attributes:      dir.Attributes | protocols.AttrDirectory,
		IsDirectory:     true,
		IsRealDirectory: false,
	}
	if dir.IsRootDirectory {
		virtual.Name = "/"
		virtual.IsRootDirectory = true
	}
	dir.Children = append([]*Entry{virtual}, dir.Children...)
	return true
}

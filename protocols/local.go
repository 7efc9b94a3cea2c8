package protocols

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
)

type LocalFileSystem struct {
	RootPath string
}

func (l *LocalFileSystem) Init() error {
	return os.MkdirAll(l.RootPath, 0755)
}

func (l *LocalFileSystem) Name() string {
	return "local:" + l.RootPath
}

func (l *LocalFileSystem) Close() error {
	return nil
}

// Commit is a no-op: writes land on the host filesystem when the file is closed.
func (l *LocalFileSystem) Commit() error {
	return nil
}

func (l *LocalFileSystem) fullPath(p string) string {
	return filepath.Join(l.RootPath, filepath.FromSlash(path.Clean("/"+p)))
}

func (l *LocalFileSystem) OpenDir(p string) (DirLister, error) {
	f, err := os.Open(l.fullPath(p))
	if err != nil {
		return nil, mapOSError("opendir", p, err)
	}
	return &localLister{f: f, dir: p}, nil
}

type localLister struct {
	f   *os.File
	dir string
}

func (ll *localLister) Next(n int) ([]FileEntry, error) {
	if n <= 0 {
		n = 1
	}
	entries, err := ll.f.ReadDir(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, mapOSError("readdir", ll.dir, err)
	}
	if len(entries) == 0 {
		return nil, io.EOF
	}

	var files []FileEntry
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		files = append(files, FileEntry{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModTime:    info.ModTime(),
			IsDir:      entry.IsDir(),
			Attributes: attributesFor(entry.IsDir()),
			Path:       path.Join(ll.dir, entry.Name()),
		})
	}
	return files, nil
}

func (ll *localLister) Close() error {
	return ll.f.Close()
}

func (l *LocalFileSystem) Open(p string) (io.ReadCloser, error) {
	f, err := os.Open(l.fullPath(p))
	if err != nil {
		return nil, mapOSError("open", p, err)
	}
	return f, nil
}

func (l *LocalFileSystem) Create(p string) (io.WriteCloser, error) {
	f, err := os.Create(l.fullPath(p))
	if err != nil {
		return nil, mapOSError("create", p, err)
	}
	return &localWriter{f: f, path: p}, nil
}

// localWriter maps write errors so callers can detect a full disk.
type localWriter struct {
	f    *os.File
	path string
}

func (w *localWriter) Write(b []byte) (int, error) {
	n, err := w.f.Write(b)
	return n, mapOSError("write", w.path, err)
}

func (w *localWriter) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return mapOSError("sync", w.path, err)
	}
	return mapOSError("close", w.path, w.f.Close())
}

func (l *LocalFileSystem) Mkdir(p string) error {
	return mapOSError("mkdir", p, os.Mkdir(l.fullPath(p), 0755))
}

func (l *LocalFileSystem) Stat(p string) (*FileEntry, error) {
	info, err := os.Stat(l.fullPath(p))
	if err != nil {
		return nil, mapOSError("stat", p, err)
	}
	return &FileEntry{
		Name:       info.Name(),
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		IsDir:      info.IsDir(),
		Attributes: attributesFor(info.IsDir()),
		Path:       p,
	}, nil
}

func (l *LocalFileSystem) Remove(p string) error {
	return mapOSError("remove", p, os.Remove(l.fullPath(p)))
}

func (l *LocalFileSystem) RemoveAll(p string) error {
	full := l.fullPath(p)
	if full == filepath.Clean(l.RootPath) {
		entries, err := os.ReadDir(full)
		if err != nil {
			return mapOSError("removeall", p, err)
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(full, e.Name())); err != nil {
				return mapOSError("removeall", p, err)
			}
		}
		return nil
	}
	if _, err := os.Stat(full); err != nil {
		return mapOSError("removeall", p, err)
	}
	return mapOSError("removeall", p, os.RemoveAll(full))
}

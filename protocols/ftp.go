package protocols

import (
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
)

type FTPFileSystem struct {
	Host     string
	Port     int
	User     string
	Password string
	RootPath string
	conn     *ftp.ServerConn
}

func (f *FTPFileSystem) Init() error {
	addr := fmt.Sprintf("%s:%d", f.Host, f.Port)
	c, err := ftp.Dial(addr, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return err
	}

	if err := c.Login(f.User, f.Password); err != nil {
		c.Quit()
		return err
	}
	f.conn = c
	return nil
}

func (f *FTPFileSystem) Name() string {
	return fmt.Sprintf("ftp://%s@%s:%d%s", f.User, f.Host, f.Port, f.RootPath)
}

func (f *FTPFileSystem) Close() error {
	if f.conn != nil {
		return f.conn.Quit()
	}
	return nil
}

func (f *FTPFileSystem) Commit() error {
	return nil
}

func (f *FTPFileSystem) fullPath(p string) string {
	return path.Join("/", f.RootPath, path.Clean("/"+p))
}

// Reply codes from RFC 959 that map onto volume errors.
const (
	replyInsufficientStorage = 452
	replyFileUnavailable     = 550
	replyExceededStorage     = 552
)

// mapFTPError classifies server replies: 550 is a missing file, 452/552 a
// full disk or exceeded quota.
func mapFTPError(op, p string, err error) error {
	if err == nil {
		return nil
	}
	var te *textproto.Error
	if errors.As(err, &te) {
		switch te.Code {
		case replyFileUnavailable:
			return fmt.Errorf("%s %s: %w: %v", op, p, ErrNotFound, err)
		case replyInsufficientStorage, replyExceededStorage:
			return fmt.Errorf("%s %s: %w: %v", op, p, ErrResourceExhausted, err)
		}
	}
	return fmt.Errorf("%s %s: %w", op, p, err)
}

func (f *FTPFileSystem) list(relPath string) ([]FileEntry, error) {
	entries, err := f.conn.List(f.fullPath(relPath))
	if err != nil {
		return nil, mapFTPError("list", relPath, err)
	}

	var files []FileEntry
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		if entry.Type == ftp.EntryTypeLink {
			continue
		}
		isDir := entry.Type == ftp.EntryTypeFolder
		files = append(files, FileEntry{
			Name:       entry.Name,
			Size:       int64(entry.Size),
			ModTime:    entry.Time,
			IsDir:      isDir,
			Attributes: attributesFor(isDir),
			Path:       path.Join(relPath, entry.Name),
		})
	}
	return files, nil
}

// OpenDir fetches the whole LIST reply; FTP has no paged listing.
func (f *FTPFileSystem) OpenDir(relPath string) (DirLister, error) {
	files, err := f.list(relPath)
	if err != nil {
		return nil, err
	}
	return newSliceLister(files), nil
}

func (f *FTPFileSystem) Open(relPath string) (io.ReadCloser, error) {
	r, err := f.conn.Retr(f.fullPath(relPath))
	if err != nil {
		return nil, mapFTPError("retr", relPath, err)
	}
	return r, nil
}

// STOR needs a reader, so Create hands out the write end of a pipe and runs
// the transfer until Close.
func (f *FTPFileSystem) Create(relPath string) (io.WriteCloser, error) {
	fullPath := f.fullPath(relPath)
	r, w := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := f.conn.Stor(fullPath, r)
		if err != nil {
			r.CloseWithError(err)
		} else {
			r.Close()
		}
		done <- err
	}()
	return &ftpWriter{pw: w, done: done, path: relPath}, nil
}

type ftpWriter struct {
	pw   *io.PipeWriter
	done chan error
	path string
}

func (w *ftpWriter) Write(b []byte) (int, error) {
	n, err := w.pw.Write(b)
	return n, mapFTPError("stor", w.path, err)
}

func (w *ftpWriter) Close() error {
	w.pw.Close()
	return mapFTPError("stor", w.path, <-w.done)
}

func (f *FTPFileSystem) Mkdir(relPath string) error {
	return mapFTPError("mkd", relPath, f.conn.MakeDir(f.fullPath(relPath)))
}

func (f *FTPFileSystem) Stat(relPath string) (*FileEntry, error) {
	fullPath := f.fullPath(relPath)
	if fullPath == f.fullPath("/") {
		return &FileEntry{Name: "/", IsDir: true, Attributes: AttrDirectory, Path: relPath}, nil
	}
	// FTP LIST is often the only way to get stat
	parent := path.Dir(fullPath)
	name := path.Base(fullPath)

	entries, err := f.conn.List(parent)
	if err != nil {
		return nil, mapFTPError("stat", relPath, err)
	}

	for _, entry := range entries {
		if entry.Name == name {
			isDir := entry.Type == ftp.EntryTypeFolder
			return &FileEntry{
				Name:       entry.Name,
				Size:       int64(entry.Size),
				ModTime:    entry.Time,
				IsDir:      isDir,
				Attributes: attributesFor(isDir),
				Path:       relPath,
			}, nil
		}
	}
	return nil, fmt.Errorf("stat %s: %w", relPath, ErrNotFound)
}

func (f *FTPFileSystem) Remove(relPath string) error {
	return mapFTPError("dele", relPath, f.conn.Delete(f.fullPath(relPath)))
}

func (f *FTPFileSystem) RemoveAll(relPath string) error {
	fullPath := f.fullPath(relPath)
	if fullPath == f.fullPath("/") {
		files, err := f.list(relPath)
		if err != nil {
			return err
		}
		for _, e := range files {
			if e.IsDir {
				err = f.conn.RemoveDirRecur(f.fullPath(e.Path))
			} else {
				err = f.conn.Delete(f.fullPath(e.Path))
			}
			if err != nil {
				return mapFTPError("removeall", e.Path, err)
			}
		}
		return nil
	}
	return mapFTPError("removeall", relPath, f.conn.RemoveDirRecur(fullPath))
}

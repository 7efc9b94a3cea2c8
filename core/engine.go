package core

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"dualpane/logging"
	"dualpane/metrics"
	"dualpane/protocols"
)

const copyBufferSize = 64 << 10

// Confirmation gates destructive or conflicting operations. Every call
// blocks until the user has answered.
type Confirmation interface {
	ConfirmOverwrite(path string) bool
	ConfirmDelete(path string) bool
	NotifyResourceExhausted(path string)
}

// CopyStats totals what a copy wrote, including the part done before a
// failure.
type CopyStats struct {
	Files int
	Dirs  int
	Bytes int64
}

func (s *CopyStats) add(o CopyStats) {
	s.Files += o.Files
	s.Dirs += o.Dirs
	s.Bytes += o.Bytes
}

// Engine copies and deletes entries between panes. Copies are depth-first
// and not transactional: a failure leaves the destination partially filled.
type Engine struct {
	Confirm Confirmation
	buf     []byte
}

func NewEngine(confirm Confirmation) *Engine {
	return &Engine{Confirm: confirm}
}

func (e *Engine) confirmOverwrite(path string) error {
	if e.Confirm == nil {
		return fmt.Errorf("%s: %w", path, protocols.ErrAlreadyExists)
	}
	if !e.Confirm.ConfirmOverwrite(path) {
		return fmt.Errorf("overwrite %s: %w", path, ErrUserCancelled)
	}
	return nil
}

func (e *Engine) confirmDelete(path string) error {
	if e.Confirm == nil || !e.Confirm.ConfirmDelete(path) {
		return fmt.Errorf("delete %s: %w", path, ErrUserCancelled)
	}
	return nil
}

func exists(vol protocols.Volume, path string) (*protocols.FileEntry, error) {
	st, err := vol.Stat(path)
	if errors.Is(err, protocols.ErrNotFound) {
		return nil, nil
	}
	return st, err
}

// sameVolume reports whether a and b address the same storage.
func sameVolume(a, b protocols.Volume) bool {
	return a == b || a.Name() == b.Name()
}

// nested reports whether dst is src itself or lies below it on the same
// volume. Copying in either case would read what it is writing.
func nested(srcVol protocols.Volume, src string, dstVol protocols.Volume, dst string) bool {
	if !sameVolume(srcVol, dstVol) {
		return false
	}
	s, d := path.Clean("/"+src), path.Clean("/"+dst)
	return d == s || s == "/" || strings.HasPrefix(d, s+"/")
}

func recordFailure(op string, err error) {
	metrics.RecordError(op, KindOf(err).String())
}

// Copy copies entry from the source pane's directory into the destination
// pane's directory, then refreshes the destination pane.
func (e *Engine) Copy(entry *Entry, src, dst *Pane, overwrite bool) (CopyStats, error) {
	var stats CopyStats
	if entry == nil {
		return stats, fmt.Errorf("%w: nothing selected", ErrInvalidOperation)
	}

	err := func() error {
		if entry.IsVirtual() {
			return fmt.Errorf("%w: cannot copy %s", ErrInvalidOperation, entry.Name)
		}
		srcPath, err := JoinPath(src.Path(), entry.Name)
		if err != nil {
			return err
		}
		dstPath, err := JoinPath(dst.Path(), entry.Name)
		if err != nil {
			return err
		}
		if nested(src.Volume(), srcPath, dst.Volume(), dstPath) {
			return fmt.Errorf("%w: cannot copy %s into itself", ErrInvalidOperation, srcPath)
		}
		logging.Info("copy",
			logging.String("from", src.Volume().Name()+srcPath),
			logging.String("to", dst.Volume().Name()+dstPath),
		)
		if entry.IsDirectory {
			return e.copyDir(src.Volume(), srcPath+"/", dst.Volume(), dstPath+"/", overwrite, &stats)
		}
		return e.copyFile(src.Volume(), srcPath, dst.Volume(), dstPath, overwrite, &stats)
	}()

	if err == nil {
		err = dst.Volume().Commit()
	}
	if rerr := dst.Reload(); err == nil {
		err = rerr
	}
	if err != nil {
		recordFailure("copy", err)
		logging.Warn("copy failed", logging.String("entry", entry.Name), logging.Int("files", stats.Files), logging.Err(err))
	}
	return stats, err
}

// CopyTree copies the content of srcDir into dstDir, creating dstDir when it
// does not exist yet.
func (e *Engine) CopyTree(srcVol protocols.Volume, srcDir string, dstVol protocols.Volume, dstDir string, overwrite bool) (CopyStats, error) {
	var stats CopyStats
	var err error
	if nested(srcVol, srcDir, dstVol, dstDir) {
		err = fmt.Errorf("%w: cannot copy %s into itself", ErrInvalidOperation, srcDir)
	} else {
		err = e.copyDir(srcVol, srcDir, dstVol, dstDir, overwrite, &stats)
	}
	if err != nil {
		recordFailure("copy_tree", err)
	}
	return stats, err
}

func (e *Engine) copyDir(srcVol protocols.Volume, srcDir string, dstVol protocols.Volume, dstDir string, overwrite bool, stats *CopyStats) error {
	st, err := exists(dstVol, dstDir)
	if err != nil {
		return err
	}
	switch {
	case st != nil && !st.IsDir:
		return fmt.Errorf("copy to %s: %w: destination is a file", dstDir, protocols.ErrAlreadyExists)
	case st != nil && !overwrite && !IsVolumeRoot(dstDir):
		if err := e.confirmOverwrite(dstDir); err != nil {
			return err
		}
		// one answer covers the whole subtree
		overwrite = true
	case st == nil:
		if err := dstVol.Mkdir(dstDir); err != nil {
			return fmt.Errorf("mkdir %s: %w", dstDir, err)
		}
		stats.Dirs++
		metrics.RecordDirCreated(dstVol.Name())
	}

	children, err := Scan(srcVol, srcDir, false)
	if err != nil {
		return err
	}
	defer FreeDir(children)

	for _, child := range children.Children {
		srcPath, err := JoinPath(srcDir, child.Name)
		if err != nil {
			return err
		}
		dstPath, err := JoinPath(dstDir, child.Name)
		if err != nil {
			return err
		}
		if child.IsDirectory {
			err = e.copyDir(srcVol, srcPath+"/", dstVol, dstPath+"/", overwrite, stats)
		} else {
			err = e.copyFile(srcVol, srcPath, dstVol, dstPath, overwrite, stats)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) copyFile(srcVol protocols.Volume, srcPath string, dstVol protocols.Volume, dstPath string, overwrite bool, stats *CopyStats) error {
	st, err := exists(dstVol, dstPath)
	if err != nil {
		return err
	}
	if st != nil {
		if st.IsDir {
			return fmt.Errorf("copy to %s: %w: destination is a directory", dstPath, protocols.ErrAlreadyExists)
		}
		if !overwrite {
			if err := e.confirmOverwrite(dstPath); err != nil {
				return err
			}
		}
	}

	r, err := srcVol.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer r.Close()

	w, err := dstVol.Create(dstPath)
	if err != nil {
		return e.failWrite(dstVol, dstPath, fmt.Errorf("create %s: %w", dstPath, err))
	}

	if e.buf == nil {
		e.buf = make([]byte, copyBufferSize)
	}
	n, err := io.CopyBuffer(w, r, e.buf)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return e.failWrite(dstVol, dstPath, fmt.Errorf("copy %s: %w", srcPath, err))
	}

	stats.Files++
	stats.Bytes += n
	metrics.RecordFileCopied(dstVol.Name(), n)
	logging.Debug("copied file", logging.String("path", dstPath), logging.Int64("size", n))
	return nil
}

// failWrite reports a full destination to the user and drops the partial
// file. It never retries.
func (e *Engine) failWrite(dstVol protocols.Volume, dstPath string, err error) error {
	if !errors.Is(err, protocols.ErrResourceExhausted) {
		return err
	}
	logging.Error("destination out of resource", logging.String("path", dstPath), logging.Err(err))
	if e.Confirm != nil {
		e.Confirm.NotifyResourceExhausted(dstPath)
	}
	if rerr := dstVol.Remove(dstPath); rerr != nil && !errors.Is(rerr, protocols.ErrNotFound) {
		logging.Warn("remove partial file", logging.String("path", dstPath), logging.Err(rerr))
	}
	return err
}

// Delete removes entry from the pane's directory after confirmation, then
// refreshes the pane.
func (e *Engine) Delete(entry *Entry, pane *Pane) error {
	if entry == nil {
		return fmt.Errorf("%w: nothing selected", ErrInvalidOperation)
	}
	if entry.IsVirtual() {
		return fmt.Errorf("%w: cannot delete %s", ErrInvalidOperation, entry.Name)
	}
	path, err := JoinPath(pane.Path(), entry.Name)
	if err != nil {
		return err
	}
	if err := e.confirmDelete(path); err != nil {
		return err
	}

	err = e.remove(pane.Volume(), path, entry.IsDirectory)
	if err == nil {
		err = pane.Volume().Commit()
	}
	if rerr := pane.Reload(); err == nil {
		err = rerr
	}
	if err != nil {
		recordFailure("delete", err)
	}
	return err
}

func (e *Engine) remove(vol protocols.Volume, path string, isDir bool) error {
	typ := "file"
	var err error
	if isDir {
		typ = "dir"
		err = vol.RemoveAll(path + "/")
	} else {
		err = vol.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	metrics.RecordDelete(vol.Name(), typ)
	logging.Info("deleted", logging.String("volume", vol.Name()), logging.String("path", path), logging.String("type", typ))
	return nil
}

// wipe deletes every child of dir after a single confirmation for dir.
func (e *Engine) wipe(vol protocols.Volume, dir string) error {
	if err := e.confirmDelete(dir); err != nil {
		return err
	}
	tree, err := Scan(vol, dir, false)
	if err != nil {
		return err
	}
	defer FreeDir(tree)
	for _, child := range tree.Children {
		path, err := JoinPath(dir, child.Name)
		if err != nil {
			return err
		}
		if err := e.remove(vol, path, child.IsDirectory); err != nil {
			return err
		}
	}
	return nil
}

package protocols

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFileSystem is an in-process volume. Listings come back in creation
// order, PageSize entries at a time.
type MemoryFileSystem struct {
	Label    string
	PageSize int
	Capacity int64 // bytes, 0 means unlimited

	// ListErr injects a failure into the listing of a directory after its
	// first page has been returned.
	ListErr map[string]error

	mu      sync.Mutex
	nodes   map[string]*memNode
	seq     int
	used    int64
	creates int
	written int64
	commits int
}

type memNode struct {
	isDir   bool
	data    []byte
	modTime time.Time
	seq     int
}

// MemoryStats counts the mutating calls a MemoryFileSystem has served.
type MemoryStats struct {
	Creates int
	Written int64
	Commits int
	Used    int64
}

func NewMemoryFileSystem(label string) *MemoryFileSystem {
	m := &MemoryFileSystem{Label: label, PageSize: 4}
	m.nodes = map[string]*memNode{"/": {isDir: true, modTime: time.Now()}}
	return m
}

func (m *MemoryFileSystem) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nodes == nil {
		m.nodes = map[string]*memNode{"/": {isDir: true, modTime: time.Now()}}
	}
	return nil
}

func (m *MemoryFileSystem) Name() string {
	return "memory:" + m.Label
}

func (m *MemoryFileSystem) Close() error {
	return nil
}

func (m *MemoryFileSystem) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits++
	return nil
}

func (m *MemoryFileSystem) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MemoryStats{Creates: m.creates, Written: m.written, Commits: m.commits, Used: m.used}
}

func clean(p string) string {
	return path.Clean("/" + p)
}

func (m *MemoryFileSystem) parentDir(p string) (*memNode, error) {
	parent, ok := m.nodes[path.Dir(p)]
	if !ok {
		return nil, fmt.Errorf("parent of %s: %w", p, ErrNotFound)
	}
	if !parent.isDir {
		return nil, fmt.Errorf("parent of %s is a file", p)
	}
	return parent, nil
}

func (m *MemoryFileSystem) children(dir string) []string {
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	var names []string
	for p := range m.nodes {
		if p == dir || !strings.HasPrefix(p, prefix) {
			continue
		}
		if strings.Contains(p[len(prefix):], "/") {
			continue
		}
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool { return m.nodes[names[i]].seq < m.nodes[names[j]].seq })
	return names
}

func (m *MemoryFileSystem) OpenDir(p string) (DirLister, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	n, ok := m.nodes[p]
	if !ok {
		return nil, fmt.Errorf("opendir %s: %w", p, ErrNotFound)
	}
	if !n.isDir {
		return nil, fmt.Errorf("opendir %s: not a directory", p)
	}
	var files []FileEntry
	for _, child := range m.children(p) {
		c := m.nodes[child]
		files = append(files, FileEntry{
			Name:       path.Base(child),
			Size:       int64(len(c.data)),
			ModTime:    c.modTime,
			IsDir:      c.isDir,
			Attributes: attributesFor(c.isDir),
			Path:       child,
		})
	}
	pageSize := m.PageSize
	if pageSize <= 0 {
		pageSize = 1
	}
	return &memLister{sliceLister: newSliceLister(files), pageSize: pageSize, fail: m.ListErr[p]}, nil
}

type memLister struct {
	*sliceLister
	pageSize int
	fail     error
	pages    int
}

// Next honours the volume page size even when the caller asks for more.
func (l *memLister) Next(n int) ([]FileEntry, error) {
	if l.fail != nil && l.pages > 0 {
		return nil, l.fail
	}
	if n <= 0 || n > l.pageSize {
		n = l.pageSize
	}
	page, err := l.sliceLister.Next(n)
	if err == nil {
		l.pages++
	}
	return page, err
}

func (m *MemoryFileSystem) Stat(p string) (*FileEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	n, ok := m.nodes[p]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", p, ErrNotFound)
	}
	return &FileEntry{
		Name:       path.Base(p),
		Size:       int64(len(n.data)),
		ModTime:    n.modTime,
		IsDir:      n.isDir,
		Attributes: attributesFor(n.isDir),
		Path:       p,
	}, nil
}

func (m *MemoryFileSystem) Open(p string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	n, ok := m.nodes[p]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", p, ErrNotFound)
	}
	if n.isDir {
		return nil, fmt.Errorf("open %s: is a directory", p)
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(n.data))), nil
}

func (m *MemoryFileSystem) Create(p string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if _, err := m.parentDir(p); err != nil {
		return nil, fmt.Errorf("create %s: %w", p, err)
	}
	if n, ok := m.nodes[p]; ok {
		if n.isDir {
			return nil, fmt.Errorf("create %s: is a directory", p)
		}
		m.used -= int64(len(n.data))
		n.data = nil
		n.modTime = time.Now()
	} else {
		m.seq++
		m.nodes[p] = &memNode{modTime: time.Now(), seq: m.seq}
	}
	m.creates++
	return &memWriter{m: m, path: p}, nil
}

type memWriter struct {
	m    *MemoryFileSystem
	path string
}

func (w *memWriter) Write(b []byte) (int, error) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	n, ok := w.m.nodes[w.path]
	if !ok {
		return 0, fmt.Errorf("write %s: %w", w.path, ErrNotFound)
	}
	room := len(b)
	if w.m.Capacity > 0 && w.m.used+int64(room) > w.m.Capacity {
		room = int(w.m.Capacity - w.m.used)
	}
	n.data = append(n.data, b[:room]...)
	w.m.used += int64(room)
	w.m.written += int64(room)
	if room < len(b) {
		return room, fmt.Errorf("write %s: %w", w.path, ErrResourceExhausted)
	}
	return room, nil
}

func (w *memWriter) Close() error {
	return nil
}

func (m *MemoryFileSystem) Mkdir(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if _, ok := m.nodes[p]; ok {
		return fmt.Errorf("mkdir %s: %w", p, ErrAlreadyExists)
	}
	if _, err := m.parentDir(p); err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}
	m.seq++
	m.nodes[p] = &memNode{isDir: true, modTime: time.Now(), seq: m.seq}
	return nil
}

func (m *MemoryFileSystem) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	n, ok := m.nodes[p]
	if !ok {
		return fmt.Errorf("remove %s: %w", p, ErrNotFound)
	}
	if n.isDir && len(m.children(p)) > 0 {
		return fmt.Errorf("remove %s: directory not empty", p)
	}
	m.used -= int64(len(n.data))
	delete(m.nodes, p)
	return nil
}

// RemoveAll deletes a directory and its descendants. On the root it only
// empties the volume.
func (m *MemoryFileSystem) RemoveAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if _, ok := m.nodes[p]; !ok {
		return fmt.Errorf("removeall %s: %w", p, ErrNotFound)
	}
	prefix := p
	if prefix != "/" {
		prefix += "/"
	}
	for k, n := range m.nodes {
		if k == "/" {
			continue
		}
		if k == p || strings.HasPrefix(k, prefix) {
			m.used -= int64(len(n.data))
			delete(m.nodes, k)
		}
	}
	return nil
}

// MkdirAll creates p and any missing parents.
func (m *MemoryFileSystem) MkdirAll(p string) error {
	p = clean(p)
	if p == "/" {
		return nil
	}
	if err := m.MkdirAll(path.Dir(p)); err != nil {
		return err
	}
	if err := m.Mkdir(p); err != nil {
		if st, serr := m.Stat(p); serr == nil && st.IsDir {
			return nil
		}
		return err
	}
	return nil
}

// WriteFile stores data at p, creating parent directories.
func (m *MemoryFileSystem) WriteFile(p string, data []byte) error {
	if err := m.MkdirAll(path.Dir(clean(p))); err != nil {
		return err
	}
	w, err := m.Create(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (m *MemoryFileSystem) ReadFile(p string) ([]byte, error) {
	r, err := m.Open(p)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Files returns every file path under the volume with its content.
func (m *MemoryFileSystem) Files() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for p, n := range m.nodes {
		if !n.isDir {
			out[p] = string(n.data)
		}
	}
	return out
}

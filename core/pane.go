package core

import (
	"fmt"
	"strings"

	"dualpane/logging"
	"dualpane/protocols"
)

// DefaultPageSize is the number of rows a pane shows at once.
const DefaultPageSize = 20

type PaneConfig struct {
	Label    string
	Volume   protocols.Volume
	Root     string // ascend never leaves this directory
	PageSize int
	// NoParentEntry suppresses the synthetic ".." / "/" head entry.
	NoParentEntry bool
}

// Pane is one browsable side: a directory of a volume, its listing, a cursor
// and the history needed to restore the cursor when ascending.
type Pane struct {
	Label      string
	volume     protocols.Volume
	rootPath   string
	path       string
	root       *Entry
	history    Stack
	offsetID   int
	selectedID int
	pageSize   int
	withParent bool
}

// NewPane opens a pane at its root directory.
func NewPane(cfg PaneConfig) (*Pane, error) {
	if cfg.Volume == nil {
		return nil, fmt.Errorf("pane %s: volume is required", cfg.Label)
	}
	root := cfg.Root
	if root == "" {
		root = "/"
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	if err := checkLen(root); err != nil {
		return nil, err
	}
	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 2 {
		return nil, fmt.Errorf("pane %s: page size must be at least 2", cfg.Label)
	}
	p := &Pane{
		Label:      cfg.Label,
		volume:     cfg.Volume,
		rootPath:   root,
		path:       root,
		root:       &Entry{Name: root, IsDirectory: true, IsRealDirectory: true},
		pageSize:   pageSize,
		withParent: !cfg.NoParentEntry,
	}
	if err := p.Reload(); err != nil {
		return p, err
	}
	return p, nil
}

func (p *Pane) Path() string { return p.path }
func (p *Pane) RootPath() string { return p.rootPath }
func (p *Pane) Volume() protocols.Volume { return p.volume }
func (p *Pane) Entries() []*Entry { return p.root.Children }
func (p *Pane) Count() int { return p.root.Count() }
func (p *Pane) SelectedID() int { return p.selectedID }
func (p *Pane) OffsetID() int { return p.offsetID }
func (p *Pane) PageSize() int { return p.pageSize }
func (p *Pane) Depth() int { return p.history.Len() }
func (p *Pane) AtRoot() bool { return p.path == p.rootPath }
func (p *Pane) Cursor() (offset, selected int) { return p.offsetID, p.selectedID }

// Selected returns the entry under the cursor, or nil on an empty listing.
func (p *Pane) Selected() *Entry {
	if p.selectedID < 0 || p.selectedID >= p.Count() {
		return nil
	}
	return p.root.Children[p.selectedID]
}

// Window returns the visible rows, starting at the scroll offset.
func (p *Pane) Window() []*Entry {
	n := p.Count()
	if n == 0 {
		return nil
	}
	end := p.offsetID + p.pageSize
	if end > n {
		end = n
	}
	return p.root.Children[p.offsetID:end]
}

// Move shifts the selection by delta with wraparound and scrolls the window
// as little as possible. Moving up keeps one row above the selection in
// view; moving down keeps one row below it.
func (p *Pane) Move(delta int) {
	n := p.Count()
	if n == 0 {
		p.selectedID, p.offsetID = 0, 0
		return
	}

	p.selectedID += delta

	if p.selectedID < 0 {
		p.selectedID = n - 1
		p.offsetID = max(0, n-p.pageSize)
	}

	if p.selectedID > n-1 {
		p.selectedID = 0
		p.offsetID = 0
	}

	if p.offsetID >= p.selectedID {
		p.offsetID = max(0, p.selectedID-1)
	} else if p.selectedID > p.pageSize-2 && delta > 0 &&
		p.offsetID+p.pageSize-2 < p.selectedID {
		bottom := p.selectedID
		if p.selectedID < n-1 {
			bottom++
		}
		p.offsetID = bottom - p.pageSize + 1
	}
}

// Refresh re-scans the current directory and resets the cursor. On a failed
// scan the listing is left empty.
func (p *Pane) Refresh(addParent bool) error {
	tree, err := Scan(p.volume, p.path, false)
	FreeDir(p.root)
	if err != nil {
		tree = &Entry{Name: p.path, IsDirectory: true, IsRealDirectory: true}
	}
	if addParent {
		AddParentDir(tree)
	}
	p.root = tree
	p.offsetID, p.selectedID = 0, 0
	if err != nil {
		logging.Warn("refresh failed", logging.String("pane", p.Label), logging.String("path", p.path), logging.Err(err))
		return err
	}
	return nil
}

// Reload refreshes with the pane's own parent-entry setting.
func (p *Pane) Reload() error {
	return p.Refresh(p.withParent)
}

// Reset returns the pane to its root and drops the navigation history.
func (p *Pane) Reset() error {
	p.path = p.rootPath
	p.history.Reset()
	return p.Reload()
}

func (p *Pane) load(path string) (*Entry, error) {
	tree, err := Scan(p.volume, path, false)
	if err != nil {
		return nil, err
	}
	if p.withParent {
		AddParentDir(tree)
	}
	return tree, nil
}

func (p *Pane) swap(path string, tree *Entry) {
	FreeDir(p.root)
	p.path = path
	p.root = tree
}

// Descend enters the selected directory. On the synthetic parent entry it
// ascends instead. A failed scan leaves the pane unchanged.
func (p *Pane) Descend() error {
	sel := p.Selected()
	if sel == nil {
		return fmt.Errorf("%w: nothing selected", ErrInvalidOperation)
	}
	if sel.IsVirtual() {
		return p.Ascend()
	}
	if !sel.IsDirectory {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidOperation, sel.Name)
	}

	next, err := GotoSubDir(p.path, sel.Name)
	if err != nil {
		return err
	}
	tree, err := p.load(next)
	if err != nil {
		return err
	}

	p.history.Push(p.offsetID, p.selectedID)
	p.swap(next, tree)
	p.offsetID, p.selectedID = 0, 0
	return nil
}

// Ascend returns to the parent directory and restores the cursor it had
// there.
func (p *Pane) Ascend() error {
	if p.AtRoot() {
		return fmt.Errorf("%w: %s is the pane root", ErrInvalidOperation, p.path)
	}
	parent, err := GotoParentDir(p.path)
	if err != nil {
		return err
	}
	tree, err := p.load(parent)
	if err != nil {
		return err
	}

	f, _ := p.history.Pop()
	p.swap(parent, tree)
	p.offsetID, p.selectedID = f.OffsetID, f.SelectedID

	// the parent may have shrunk since the frame was pushed
	if n := p.Count(); p.selectedID >= n {
		p.selectedID = max(0, n-1)
	}
	if p.offsetID > p.selectedID {
		p.offsetID = p.selectedID
	}
	return nil
}

// SelectName moves the cursor onto the entry called name.
func (p *Pane) SelectName(name string) bool {
	for i, e := range p.root.Children {
		if e.Name == name {
			p.Move(i - p.selectedID)
			return true
		}
	}
	return false
}

// Navigate opens dir, a path below the pane root, descending one level at a
// time so the history matches interactive navigation.
func (p *Pane) Navigate(dir string) error {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	if !strings.HasPrefix(dir, p.rootPath) {
		return fmt.Errorf("%w: %s is outside %s", ErrInvalidOperation, dir, p.rootPath)
	}
	for !p.AtRoot() {
		if err := p.Ascend(); err != nil {
			return err
		}
	}
	for _, seg := range strings.Split(strings.TrimPrefix(dir, p.rootPath), "/") {
		if seg == "" {
			continue
		}
		if !p.SelectName(seg) {
			return fmt.Errorf("navigate %s: %s: %w", dir, seg, protocols.ErrNotFound)
		}
		if err := p.Descend(); err != nil {
			return err
		}
	}
	return nil
}

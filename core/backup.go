package core

import (
	"fmt"
	"strings"
	"time"

	"dualpane/logging"
	"dualpane/metrics"
	"dualpane/protocols"
)

// SnapshotLayout names snapshot directories; the names sort chronologically.
const SnapshotLayout = "2006-01-02--15-04-05"

// SnapshotName returns the directory name for a snapshot taken at t.
func SnapshotName(t time.Time) string {
	return t.UTC().Format(SnapshotLayout)
}

// ParseSnapshotName reports the time a snapshot was taken.
func ParseSnapshotName(name string) (time.Time, bool) {
	t, err := time.ParseInLocation(SnapshotLayout, strings.TrimSuffix(name, "/"), time.UTC)
	return t, err == nil
}

// BackupDir returns the backup set directory of appID under root.
func BackupDir(root, appID string) (string, error) {
	return GotoSubDir(root, appID)
}

type BackupConfig struct {
	Volume   protocols.Volume
	Root     string
	AppID    string
	PageSize int
	Journal  *Journal
}

// BackupManager keeps timestamped snapshots of the primary pane's root in a
// backup pane on another volume.
type BackupManager struct {
	engine  *Engine
	primary *Pane
	pane    *Pane
	journal *Journal
	Now     func() time.Time
}

// NewBackupManager creates the backup set directory if needed and opens a
// pane on it.
func NewBackupManager(engine *Engine, primary *Pane, cfg BackupConfig) (*BackupManager, error) {
	dir, err := BackupDir(cfg.Root, cfg.AppID)
	if err != nil {
		return nil, err
	}
	if err := mkdirAll(cfg.Volume, dir); err != nil {
		return nil, fmt.Errorf("create backup dir %s: %w", dir, err)
	}
	pane, err := NewPane(PaneConfig{
		Label:         "backup",
		Volume:        cfg.Volume,
		Root:          dir,
		PageSize:      cfg.PageSize,
		NoParentEntry: true,
	})
	if err != nil {
		return nil, err
	}
	journal := cfg.Journal
	if journal == nil {
		journal = NewJournal("")
	}
	return &BackupManager{
		engine:  engine,
		primary: primary,
		pane:    pane,
		journal: journal,
		Now:     time.Now,
	}, nil
}

// mkdirAll creates every missing level of dir.
func mkdirAll(vol protocols.Volume, dir string) error {
	cur := "/"
	for _, seg := range strings.Split(dir, "/") {
		if seg == "" {
			continue
		}
		next, err := GotoSubDir(cur, seg)
		if err != nil {
			return err
		}
		st, err := exists(vol, next)
		if err != nil {
			return err
		}
		if st == nil {
			if err := vol.Mkdir(next); err != nil {
				return err
			}
		} else if !st.IsDir {
			return fmt.Errorf("%s: %w: not a directory", next, protocols.ErrAlreadyExists)
		}
		cur = next
	}
	return nil
}

func (b *BackupManager) Pane() *Pane       { return b.pane }
func (b *BackupManager) Journal() *Journal { return b.journal }

func (b *BackupManager) record(op, snapshot string, stats CopyStats, err error) {
	r := Record{Op: op, Snapshot: snapshot, Time: b.Now(), Files: stats.Files, Bytes: stats.Bytes}
	if err != nil {
		r.Error = err.Error()
	}
	b.journal.Add(r)
	if serr := b.journal.Save(); serr != nil {
		logging.Warn("save journal", logging.Err(serr))
	}
	metrics.RecordSnapshot(op, err == nil, float64(r.Time.Unix()))
}

// Export copies the primary root into a new snapshot and returns its name.
func (b *BackupManager) Export() (string, error) {
	name := SnapshotName(b.Now())
	start := time.Now()
	stats, err := b.export(name)
	b.record("export", name, stats, err)
	if err != nil {
		logging.Error("export failed", logging.String("snapshot", name), logging.Err(err))
		return name, err
	}
	logging.Info("exported snapshot",
		logging.String("snapshot", name),
		logging.Int("files", stats.Files),
		logging.Int64("bytes", stats.Bytes),
		logging.Duration("took", time.Since(start)),
	)
	return name, nil
}

func (b *BackupManager) export(name string) (CopyStats, error) {
	vol := b.pane.Volume()
	dir, err := GotoSubDir(b.pane.RootPath(), name)
	if err != nil {
		return CopyStats{}, err
	}
	st, err := exists(vol, dir)
	if err != nil {
		return CopyStats{}, err
	}
	if st != nil {
		return CopyStats{}, fmt.Errorf("snapshot %s: %w", name, protocols.ErrAlreadyExists)
	}
	if nested(b.primary.Volume(), b.primary.RootPath(), vol, dir) {
		return CopyStats{}, fmt.Errorf("%w: snapshot %s lies inside %s", ErrInvalidOperation, dir, b.primary.RootPath())
	}
	if err := vol.Mkdir(dir); err != nil {
		return CopyStats{}, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	stats, err := b.engine.CopyTree(b.primary.Volume(), b.primary.RootPath(), vol, dir, true)
	if err == nil {
		err = vol.Commit()
	}
	if rerr := b.pane.Reset(); err == nil {
		err = rerr
	}
	b.pane.SelectName(name)
	return stats, err
}

// selectedSnapshot returns the snapshot under the backup pane cursor.
func (b *BackupManager) selectedSnapshot() (*Entry, string, error) {
	if !b.pane.AtRoot() {
		return nil, "", fmt.Errorf("%w: backup pane is inside a snapshot", ErrInvalidOperation)
	}
	sel := b.pane.Selected()
	if sel == nil {
		return nil, "", fmt.Errorf("%w: no snapshot selected", ErrInvalidOperation)
	}
	if !sel.IsDirectory || sel.IsVirtual() {
		return nil, "", fmt.Errorf("%w: %s is not a snapshot", ErrInvalidOperation, sel.Name)
	}
	dir, err := GotoSubDir(b.pane.Path(), sel.Name)
	if err != nil {
		return nil, "", err
	}
	return sel, dir, nil
}

// Import replaces the primary root with the selected snapshot. The wipe is
// confirmed once for the whole root and cannot be undone.
func (b *BackupManager) Import() error {
	sel, dir, err := b.selectedSnapshot()
	if err != nil {
		return err
	}

	var stats CopyStats
	err = func() error {
		vol := b.primary.Volume()
		root := b.primary.RootPath()
		if nested(vol, root, b.pane.Volume(), dir) || nested(b.pane.Volume(), dir, vol, root) {
			return fmt.Errorf("%w: snapshot %s overlaps %s", ErrInvalidOperation, dir, root)
		}
		if err := b.engine.wipe(vol, root); err != nil {
			return err
		}
		var err error
		stats, err = b.engine.CopyTree(b.pane.Volume(), dir, vol, root, true)
		if err != nil {
			return err
		}
		return vol.Commit()
	}()
	if !isCancelled(err) {
		if rerr := b.primary.Reset(); err == nil {
			err = rerr
		}
	}

	b.record("import", sel.Name, stats, err)
	if err != nil {
		logging.Error("import failed", logging.String("snapshot", sel.Name), logging.Err(err))
		return err
	}
	logging.Info("imported snapshot", logging.String("snapshot", sel.Name), logging.Int("files", stats.Files))
	return nil
}

// DeleteSnapshot removes the selected snapshot after confirmation.
func (b *BackupManager) DeleteSnapshot() error {
	sel, _, err := b.selectedSnapshot()
	if err != nil {
		return err
	}
	name := sel.Name
	err = b.engine.Delete(sel, b.pane)
	b.record("delete", name, CopyStats{}, err)
	return err
}

// Snapshots lists the snapshot names, oldest first.
func (b *BackupManager) Snapshots() ([]string, error) {
	tree, err := Scan(b.pane.Volume(), b.pane.RootPath(), false)
	if err != nil {
		return nil, err
	}
	defer FreeDir(tree)
	var names []string
	for _, e := range tree.Children {
		if e.IsDirectory {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// Prune deletes snapshots older than retentionDays, each after its own
// confirmation, and returns the names it removed. Directories whose names
// are not snapshot timestamps are left alone.
func (b *BackupManager) Prune(retentionDays int) ([]string, error) {
	if retentionDays <= 0 {
		return nil, nil
	}
	names, err := b.Snapshots()
	if err != nil {
		return nil, err
	}
	cutoff := b.Now().UTC().AddDate(0, 0, -retentionDays)
	vol := b.pane.Volume()

	var pruned []string
	for _, name := range names {
		t, ok := ParseSnapshotName(name)
		if !ok || !t.Before(cutoff) {
			continue
		}
		path, err := JoinPath(b.pane.RootPath(), name)
		if err != nil {
			return pruned, err
		}
		if err := b.engine.confirmDelete(path); err != nil {
			if isCancelled(err) {
				continue
			}
			return pruned, err
		}
		err = b.engine.remove(vol, path, true)
		b.record("prune", name, CopyStats{}, err)
		if err != nil {
			return pruned, err
		}
		pruned = append(pruned, name)
	}

	if len(pruned) > 0 {
		err = vol.Commit()
		if rerr := b.pane.Reset(); err == nil {
			err = rerr
		}
	}
	return pruned, err
}

func isCancelled(err error) bool {
	return KindOf(err) == KindUserCancelled
}

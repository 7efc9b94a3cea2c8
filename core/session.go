package core

import (
	"fmt"
	"sync"

	"dualpane/protocols"
)

// Session holds the two panes of the browser and the services acting on
// them. All methods are serialized so a scheduled backup never interleaves
// with an interactive operation.
type Session struct {
	mu        sync.Mutex
	primary   *Pane
	secondary *Pane
	current   *Pane
	engine    *Engine
	backup    *BackupManager
}

// NewSession starts with the primary pane focused. backup may be nil.
func NewSession(primary, secondary *Pane, engine *Engine, backup *BackupManager) *Session {
	return &Session{
		primary:   primary,
		secondary: secondary,
		current:   primary,
		engine:    engine,
		backup:    backup,
	}
}

func (s *Session) Primary() *Pane   { return s.primary }
func (s *Session) Secondary() *Pane { return s.secondary }

// Backup returns the backup manager, or nil when the session has none.
func (s *Session) Backup() *BackupManager { return s.backup }

func (s *Session) Current() *Pane {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Peer returns the pane that is not focused.
func (s *Session) Peer() *Pane {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer()
}

func (s *Session) peer() *Pane {
	if s.current == s.primary {
		return s.secondary
	}
	return s.primary
}

// Switch moves the focus to the other pane.
func (s *Session) Switch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.peer()
}

// Do runs fn with the session locked.
func (s *Session) Do(fn func(cur, peer *Pane) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.current, s.peer())
}

// CopySelected copies the focused entry into the peer pane's directory.
func (s *Session) CopySelected(overwrite bool) (CopyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Copy(s.current.Selected(), s.current, s.peer(), overwrite)
}

// DeleteSelected deletes the focused entry.
func (s *Session) DeleteSelected() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Delete(s.current.Selected(), s.current)
}

func (s *Session) requireBackup() error {
	if s.backup == nil {
		return fmt.Errorf("%w: no backup set configured", ErrInvalidOperation)
	}
	return nil
}

func (s *Session) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBackup(); err != nil {
		return "", err
	}
	return s.backup.Export()
}

func (s *Session) Import() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBackup(); err != nil {
		return err
	}
	return s.backup.Import()
}

func (s *Session) DeleteSnapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBackup(); err != nil {
		return err
	}
	return s.backup.DeleteSnapshot()
}

// Prune drops snapshots older than retentionDays.
func (s *Session) Prune(retentionDays int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBackup(); err != nil {
		return nil, err
	}
	return s.backup.Prune(retentionDays)
}

// SelectSnapshot moves the backup pane cursor onto the snapshot called name.
func (s *Session) SelectSnapshot(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBackup(); err != nil {
		return err
	}
	pane := s.backup.Pane()
	if err := pane.Reset(); err != nil {
		return err
	}
	if !pane.SelectName(name) {
		return fmt.Errorf("snapshot %s: %w", name, protocols.ErrNotFound)
	}
	return nil
}

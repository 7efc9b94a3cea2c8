package core

import (
	"testing"

	"dualpane/protocols"
)

// scriptedConfirm answers every prompt with fixed replies and records what
// it was asked.
type scriptedConfirm struct {
	overwrite  bool
	delete     bool
	overwrites []string
	deletes    []string
	exhausted  []string
}

func (c *scriptedConfirm) ConfirmOverwrite(path string) bool {
	c.overwrites = append(c.overwrites, path)
	return c.overwrite
}

func (c *scriptedConfirm) ConfirmDelete(path string) bool {
	c.deletes = append(c.deletes, path)
	return c.delete
}

func (c *scriptedConfirm) NotifyResourceExhausted(path string) {
	c.exhausted = append(c.exhausted, path)
}

func newVolume(t *testing.T, label string, files map[string]string) *protocols.MemoryFileSystem {
	t.Helper()
	vol := protocols.NewMemoryFileSystem(label)
	for p, content := range files {
		if len(p) > 0 && p[len(p)-1] == '/' {
			if err := vol.MkdirAll(p); err != nil {
				t.Fatalf("MkdirAll(%q): %v", p, err)
			}
			continue
		}
		if err := vol.WriteFile(p, []byte(content)); err != nil {
			t.Fatalf("WriteFile(%q): %v", p, err)
		}
	}
	return vol
}

func newTestPane(t *testing.T, vol protocols.Volume, root string, pageSize int) *Pane {
	t.Helper()
	p, err := NewPane(PaneConfig{Label: "test", Volume: vol, Root: root, PageSize: pageSize})
	if err != nil {
		t.Fatalf("NewPane(%q): %v", root, err)
	}
	return p
}

func names(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package core

import (
	"errors"
	"testing"

	"dualpane/protocols"
)

func TestScanOrdersDirectoriesFirst(t *testing.T) {
	vol := protocols.NewMemoryFileSystem("order")
	for _, step := range []struct {
		path string
		dir  bool
	}{
		{"/zeta.txt", false},
		{"/beta", true},
		{"/Alpha.txt", false},
		{"/alpha", true},
		{"/b.bin", false},
	} {
		var err error
		if step.dir {
			err = vol.Mkdir(step.path)
		} else {
			err = vol.WriteFile(step.path, []byte("x"))
		}
		if err != nil {
			t.Fatalf("seed %s: %v", step.path, err)
		}
	}

	root, err := Scan(vol, "/", false)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"alpha", "beta", "Alpha.txt", "b.bin", "zeta.txt"}
	if got := names(root.Children); !equalStrings(got, want) {
		t.Errorf("Scan order = %v, want %v", got, want)
	}
	for _, e := range root.Children[:2] {
		if !e.IsDirectory || !e.IsRealDirectory || e.Attributes&protocols.AttrDirectory == 0 {
			t.Errorf("%s: not flagged as a real directory: %+v", e.Name, e)
		}
	}
	if !root.IsRootDirectory {
		t.Error("scan of / not flagged as root directory")
	}
}

func TestScanEmptyDirThenParentEntry(t *testing.T) {
	tests := []struct {
		path     string
		wantName string
	}{
		{"/", "/"},
		{"/empty/", ".."},
	}
	vol := newVolume(t, "empty", map[string]string{"/empty/": ""})
	for _, tt := range tests {
		dir, err := Scan(vol, tt.path, false)
		if err != nil {
			t.Fatalf("Scan(%q): %v", tt.path, err)
		}
		if tt.path == "/empty/" && dir.Count() != 0 {
			t.Errorf("Scan(%q).Count() = %d, want 0", tt.path, dir.Count())
		}
		before := dir.Count()
		if !AddParentDir(dir) {
			t.Fatalf("AddParentDir(%q) = false", tt.path)
		}
		if dir.Count() != before+1 {
			t.Errorf("Count after AddParentDir = %d, want %d", dir.Count(), before+1)
		}
		head := dir.Children[0]
		if head.Name != tt.wantName || !head.IsVirtual() {
			t.Errorf("head of %q = %q virtual=%v, want %q virtual", tt.path, head.Name, head.IsVirtual(), tt.wantName)
		}
		if AddParentDir(dir) {
			t.Errorf("second AddParentDir(%q) = true", tt.path)
		}
		if dir.Count() != before+1 {
			t.Errorf("second AddParentDir changed count to %d", dir.Count())
		}
	}
}

func TestScanRecursive(t *testing.T) {
	vol := newVolume(t, "deep", map[string]string{
		"/a/b/c.txt": "c",
		"/a/d.txt":   "d",
		"/e.txt":     "e",
	})
	root, err := Scan(vol, "/", true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := names(root.Children); !equalStrings(got, []string{"a", "e.txt"}) {
		t.Fatalf("root = %v", got)
	}
	a := root.Children[0]
	if got := names(a.Children); !equalStrings(got, []string{"b", "d.txt"}) {
		t.Errorf("a = %v", got)
	}
	if got := names(a.Children[0].Children); !equalStrings(got, []string{"c.txt"}) {
		t.Errorf("a/b = %v", got)
	}
}

func TestFreeDirThenRescan(t *testing.T) {
	vol := newVolume(t, "free", map[string]string{
		"/x/1": "1",
		"/x/2": "2",
		"/y":   "y",
	})
	first, err := Scan(vol, "/", true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := names(first.Children)
	FreeDir(first)
	if first.Count() != 0 {
		t.Errorf("Count after FreeDir = %d, want 0", first.Count())
	}
	FreeDir(first)
	FreeDir(nil)

	second, err := Scan(vol, "/", true)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if got := names(second.Children); !equalStrings(got, want) {
		t.Errorf("rescan = %v, want %v", got, want)
	}
}

func TestScanInterruptedListing(t *testing.T) {
	files := map[string]string{}
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		files["/big/"+n] = n
	}
	vol := newVolume(t, "flaky", files)
	injected := errors.New("connection reset")
	vol.ListErr = map[string]error{"/big": injected}

	_, err := Scan(vol, "/big/", false)
	if !errors.Is(err, injected) {
		t.Fatalf("Scan error = %v, want %v", err, injected)
	}
	if KindOf(err) != KindStorageFailure {
		t.Errorf("KindOf = %v, want %v", KindOf(err), KindStorageFailure)
	}
}

func TestScanMissingDir(t *testing.T) {
	vol := protocols.NewMemoryFileSystem("missing")
	_, err := Scan(vol, "/nope/", false)
	if !errors.Is(err, ErrStorageUnavailable) || !errors.Is(err, protocols.ErrNotFound) {
		t.Errorf("Scan error = %v, want storage unavailable wrapping not found", err)
	}
}

package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dualpane/protocols"
)

func copyPanes(t *testing.T, src, dst map[string]string) (*protocols.MemoryFileSystem, *Pane, *protocols.MemoryFileSystem, *Pane) {
	t.Helper()
	srcVol := newVolume(t, "src", src)
	dstVol := newVolume(t, "dst", dst)
	return srcVol, newTestPane(t, srcVol, "/", 20), dstVol, newTestPane(t, dstVol, "/", 20)
}

func TestCopyFile(t *testing.T) {
	_, src, dstVol, dst := copyPanes(t, map[string]string{"/save.dat": "payload"}, nil)
	e := NewEngine(&scriptedConfirm{})
	src.SelectName("save.dat")

	stats, err := e.Copy(src.Selected(), src, dst, false)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if stats.Files != 1 || stats.Bytes != int64(len("payload")) {
		t.Errorf("stats = %+v", stats)
	}
	if got, _ := dstVol.ReadFile("/save.dat"); string(got) != "payload" {
		t.Errorf("destination = %q", got)
	}
	if dstVol.Stats().Commits != 1 {
		t.Errorf("commits = %d, want 1", dstVol.Stats().Commits)
	}
	if !dst.SelectName("save.dat") {
		t.Error("destination pane not refreshed")
	}
}

func TestCopyConflict(t *testing.T) {
	tests := []struct {
		name      string
		confirm   Confirmation
		overwrite bool
		wantErr   error
		want      string
	}{
		{"declined", &scriptedConfirm{overwrite: false}, false, ErrUserCancelled, "old"},
		{"accepted", &scriptedConfirm{overwrite: true}, false, nil, "new"},
		{"no confirmation", nil, false, protocols.ErrAlreadyExists, "old"},
		{"forced", nil, true, nil, "new"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, src, dstVol, dst := copyPanes(t,
				map[string]string{"/f.txt": "new"},
				map[string]string{"/f.txt": "old"})
			createsBefore := dstVol.Stats().Creates
			src.SelectName("f.txt")

			_, err := NewEngine(tt.confirm).Copy(src.Selected(), src, dst, tt.overwrite)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Copy error = %v, want %v", err, tt.wantErr)
			}
			if got, _ := dstVol.ReadFile("/f.txt"); string(got) != tt.want {
				t.Errorf("destination = %q, want %q", got, tt.want)
			}
			if tt.wantErr != nil && dstVol.Stats().Creates != createsBefore {
				t.Errorf("refused copy performed %d writes", dstVol.Stats().Creates-createsBefore)
			}
			if sc, ok := tt.confirm.(*scriptedConfirm); ok && !equalStrings(sc.overwrites, []string{"/f.txt"}) {
				t.Errorf("prompts = %v", sc.overwrites)
			}
		})
	}
}

func TestCopyDirectoryConfirmsOnce(t *testing.T) {
	_, src, dstVol, dst := copyPanes(t,
		map[string]string{"/a/x.txt": "new x", "/a/sub/y.txt": "new y"},
		map[string]string{"/a/x.txt": "old x", "/a/sub/y.txt": "old y"})
	confirm := &scriptedConfirm{overwrite: true}
	src.SelectName("a")

	stats, err := NewEngine(confirm).Copy(src.Selected(), src, dst, false)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if !equalStrings(confirm.overwrites, []string{"/a/"}) {
		t.Errorf("prompts = %v, want one for /a/", confirm.overwrites)
	}
	if stats.Files != 2 || stats.Dirs != 0 {
		t.Errorf("stats = %+v", stats)
	}
	want := map[string]string{"/a/x.txt": "new x", "/a/sub/y.txt": "new y"}
	for p, content := range want {
		if got, _ := dstVol.ReadFile(p); string(got) != content {
			t.Errorf("%s = %q, want %q", p, got, content)
		}
	}
}

func TestCopyTreeIntoNewDirectory(t *testing.T) {
	srcVol := newVolume(t, "src", map[string]string{
		"/a/x.txt":      "x",
		"/a/sub/y.txt":  "y",
		"/a/sub/deep/z": "z",
		"/a/empty/":     "",
		"/outside.txt":  "o",
	})
	dstVol := protocols.NewMemoryFileSystem("dst")

	stats, err := NewEngine(nil).CopyTree(srcVol, "/a/", dstVol, "/b/", false)
	if err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	want := map[string]string{
		"/b/x.txt":      "x",
		"/b/sub/y.txt":  "y",
		"/b/sub/deep/z": "z",
	}
	got := dstVol.Files()
	if len(got) != len(want) {
		t.Errorf("files = %v, want %v", got, want)
	}
	for p, content := range want {
		if got[p] != content {
			t.Errorf("%s = %q, want %q", p, got[p], content)
		}
	}
	if st, err := dstVol.Stat("/b/empty"); err != nil || !st.IsDir {
		t.Errorf("empty directory not copied: %v", err)
	}
	if stats.Dirs != 4 || stats.Files != 3 {
		t.Errorf("stats = %+v, want 4 dirs 3 files", stats)
	}
}

func TestCopyResourceExhausted(t *testing.T) {
	_, src, dstVol, dst := copyPanes(t,
		map[string]string{"/big.bin": strings.Repeat("b", 64)},
		nil)
	dstVol.Capacity = 10
	confirm := &scriptedConfirm{}
	src.SelectName("big.bin")

	_, err := NewEngine(confirm).Copy(src.Selected(), src, dst, false)
	if !errors.Is(err, protocols.ErrResourceExhausted) {
		t.Fatalf("Copy error = %v, want ErrResourceExhausted", err)
	}
	if KindOf(err) != KindResourceExhausted {
		t.Errorf("KindOf = %v", KindOf(err))
	}
	if !equalStrings(confirm.exhausted, []string{"/big.bin"}) {
		t.Errorf("notified = %v", confirm.exhausted)
	}
	if _, err := dstVol.Stat("/big.bin"); !errors.Is(err, protocols.ErrNotFound) {
		t.Errorf("partial file left behind: %v", err)
	}
	if dstVol.Stats().Commits != 0 {
		t.Error("failed copy was committed")
	}
}

func TestCopyVirtualEntry(t *testing.T) {
	_, src, _, dst := copyPanes(t, map[string]string{"/f": "f"}, nil)
	if _, err := NewEngine(nil).Copy(src.Entries()[0], src, dst, false); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Copy of parent entry = %v, want ErrInvalidOperation", err)
	}
	if _, err := NewEngine(nil).Copy(nil, src, dst, false); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Copy of nil = %v, want ErrInvalidOperation", err)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		confirm *scriptedConfirm
		wantErr error
		gone    []string
		kept    []string
	}{
		{"declined", "dir", &scriptedConfirm{delete: false}, ErrUserCancelled, nil, []string{"/dir/a", "/file"}},
		{"file", "file", &scriptedConfirm{delete: true}, nil, []string{"/file"}, []string{"/dir/a"}},
		{"directory", "dir", &scriptedConfirm{delete: true}, nil, []string{"/dir/a", "/dir/sub/b", "/dir"}, []string{"/file"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vol := newVolume(t, "del", map[string]string{"/dir/a": "a", "/dir/sub/b": "b", "/file": "f"})
			p := newTestPane(t, vol, "/", 20)
			before := p.Count()
			p.SelectName(tt.target)

			err := NewEngine(tt.confirm).Delete(p.Selected(), p)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Delete error = %v, want %v", err, tt.wantErr)
			}
			if !equalStrings(tt.confirm.deletes, []string{"/" + tt.target}) {
				t.Errorf("prompts = %v", tt.confirm.deletes)
			}
			for _, g := range tt.gone {
				if _, err := vol.Stat(g); !errors.Is(err, protocols.ErrNotFound) {
					t.Errorf("%s still exists", g)
				}
			}
			for _, k := range tt.kept {
				if _, err := vol.Stat(k); err != nil {
					t.Errorf("%s removed: %v", k, err)
				}
			}
			if tt.wantErr == nil && p.Count() != before-1 {
				t.Errorf("pane count = %d, want %d", p.Count(), before-1)
			}
		})
	}
}

func TestDeleteWithoutConfirmation(t *testing.T) {
	vol := newVolume(t, "del", map[string]string{"/file": "f"})
	p := newTestPane(t, vol, "/", 20)
	p.SelectName("file")
	if err := NewEngine(nil).Delete(p.Selected(), p); !errors.Is(err, ErrUserCancelled) {
		t.Errorf("Delete = %v, want ErrUserCancelled", err)
	}
	if _, err := vol.Stat("/file"); err != nil {
		t.Errorf("file removed: %v", err)
	}
	if err := NewEngine(nil).Delete(p.Entries()[0], p); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Delete of parent entry = %v", err)
	}
}

func TestCopyOntoItself(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "save.dat"), []byte("precious"), 0644); err != nil {
		t.Fatal(err)
	}
	// two volume values over one directory still share storage
	srcVol := &protocols.LocalFileSystem{RootPath: root}
	dstVol := &protocols.LocalFileSystem{RootPath: root}
	src := newTestPane(t, srcVol, "/", 20)
	dst := newTestPane(t, dstVol, "/", 20)
	confirm := &scriptedConfirm{overwrite: true}
	src.SelectName("save.dat")

	stats, err := NewEngine(confirm).Copy(src.Selected(), src, dst, false)
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("Copy error = %v, want ErrInvalidOperation", err)
	}
	if stats.Files != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(confirm.overwrites) != 0 {
		t.Errorf("prompted for %v", confirm.overwrites)
	}
	got, err := os.ReadFile(filepath.Join(root, "save.dat"))
	if err != nil || string(got) != "precious" {
		t.Errorf("save.dat = %q, %v", got, err)
	}
}

func TestCopyIntoOwnSubtree(t *testing.T) {
	tests := []struct {
		name    string
		dstDir  string
		entry   string
		wantErr error
	}{
		{"into itself", "/a/", "a", ErrInvalidOperation},
		{"into a descendant", "/a/b/", "a", ErrInvalidOperation},
		{"same directory", "/", "a", ErrInvalidOperation},
		{"sibling with shared prefix", "/ab/", "a", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vol := newVolume(t, "one", map[string]string{
				"/a/x":  "x",
				"/a/b/": "",
				"/ab/":  "",
			})
			src := newTestPane(t, vol, "/", 20)
			dst := newTestPane(t, vol, "/", 20)
			if err := dst.Navigate(tt.dstDir); err != nil {
				t.Fatalf("Navigate(%q): %v", tt.dstDir, err)
			}
			createsBefore := vol.Stats().Creates
			filesBefore := len(vol.Files())
			src.SelectName(tt.entry)

			stats, err := NewEngine(&scriptedConfirm{overwrite: true}).Copy(src.Selected(), src, dst, false)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Copy error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if got := vol.Files()["/ab/a/x"]; got != "x" {
					t.Errorf("/ab/a/x = %q", got)
				}
				return
			}
			if stats.Dirs != 0 || stats.Files != 0 {
				t.Errorf("refused copy wrote %+v", stats)
			}
			if vol.Stats().Creates != createsBefore || len(vol.Files()) != filesBefore {
				t.Errorf("refused copy changed the volume: %v", vol.Files())
			}
		})
	}
}

func TestCopyTreeOverlap(t *testing.T) {
	vol := newVolume(t, "one", map[string]string{"/save/main.sav": "m"})
	other := protocols.NewMemoryFileSystem("other")
	tests := []struct {
		name    string
		dstVol  protocols.Volume
		srcDir  string
		dstDir  string
		wantErr error
	}{
		{"below source", vol, "/save/", "/save/backup/", ErrInvalidOperation},
		{"volume root source", vol, "/", "/elsewhere/", ErrInvalidOperation},
		{"same path", vol, "/save/", "/save", ErrInvalidOperation},
		{"disjoint", vol, "/save/", "/copy/", nil},
		{"other volume", other, "/save/", "/save/", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(nil).CopyTree(vol, tt.srcDir, tt.dstVol, tt.dstDir, true)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CopyTree(%q, %q) error = %v, want %v", tt.srcDir, tt.dstDir, err, tt.wantErr)
			}
		})
	}
}

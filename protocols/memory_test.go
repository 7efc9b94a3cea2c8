package protocols

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func drain(t *testing.T, v Volume, dir string, n int) []string {
	t.Helper()
	l, err := v.OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir(%q): %v", dir, err)
	}
	defer l.Close()
	var names []string
	for {
		page, err := l.Next(n)
		if errors.Is(err, io.EOF) {
			return names
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		for _, fe := range page {
			names = append(names, fe.Name)
		}
	}
}

func TestMemoryListingPages(t *testing.T) {
	m := NewMemoryFileSystem("pages")
	want := []string{"e", "d", "c", "b", "a", "f"}
	for _, n := range want {
		if err := m.WriteFile("/dir/"+n, []byte(n)); err != nil {
			t.Fatal(err)
		}
	}
	l, err := m.OpenDir("/dir/")
	if err != nil {
		t.Fatal(err)
	}
	page, err := l.Next(100)
	if err != nil || len(page) != m.PageSize {
		t.Errorf("first page = %d entries, %v; want %d", len(page), err, m.PageSize)
	}
	l.Close()

	if got := drain(t, m, "/dir", 100); strings.Join(got, "") != strings.Join(want, "") {
		t.Errorf("listing = %v, want creation order %v", got, want)
	}
}

func TestMemoryErrors(t *testing.T) {
	m := NewMemoryFileSystem("errs")
	if err := m.WriteFile("/d/f", []byte("x")); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"stat missing", func() error { _, err := m.Stat("/nope"); return err }(), ErrNotFound},
		{"mkdir existing", m.Mkdir("/d"), ErrAlreadyExists},
		{"create without parent", func() error { _, err := m.Create("/x/y"); return err }(), ErrNotFound},
		{"remove missing", m.Remove("/nope"), ErrNotFound},
		{"removeall missing", m.RemoveAll("/nope"), ErrNotFound},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: %v, want %v", tt.name, tt.err, tt.want)
		}
	}
	if err := m.Remove("/d"); err == nil {
		t.Error("Remove of non-empty directory succeeded")
	}
}

func TestMemoryCapacity(t *testing.T) {
	m := NewMemoryFileSystem("small")
	m.Capacity = 8
	if err := m.WriteFile("/a", []byte("12345")); err != nil {
		t.Fatal(err)
	}
	err := m.WriteFile("/b", []byte("123456"))
	if !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("WriteFile over capacity = %v, want ErrResourceExhausted", err)
	}
	if got, _ := m.ReadFile("/b"); string(got) != "123" {
		t.Errorf("partial content = %q, want %q", got, "123")
	}
	if err := m.Remove("/b"); err != nil {
		t.Fatal(err)
	}
	if got := m.Stats().Used; got != 5 {
		t.Errorf("Used = %d, want 5", got)
	}
	// overwriting frees the old content first
	if err := m.WriteFile("/a", []byte("abcdefgh")); err != nil {
		t.Errorf("rewrite within capacity: %v", err)
	}
}

func TestMemoryRemoveAllRoot(t *testing.T) {
	m := NewMemoryFileSystem("wipe")
	for _, p := range []string{"/a/b/c", "/d"} {
		if err := m.WriteFile(p, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.RemoveAll("/a/"); err != nil {
		t.Fatal(err)
	}
	if got := drain(t, m, "/", 10); len(got) != 1 || got[0] != "d" {
		t.Errorf("after RemoveAll(/a/) = %v", got)
	}
	if err := m.RemoveAll("/"); err != nil {
		t.Fatal(err)
	}
	if got := drain(t, m, "/", 10); len(got) != 0 {
		t.Errorf("after RemoveAll(/) = %v", got)
	}
	if st, err := m.Stat("/"); err != nil || !st.IsDir {
		t.Errorf("root removed: %v", err)
	}
}

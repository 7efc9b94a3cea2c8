package core

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// MaxPathLength is the volume path limit in UTF-16 code units.
const MaxPathLength = 0x400

// pathLen counts s the way the volume layer stores it.
func pathLen(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

func checkLen(p string) error {
	if n := pathLen(p); n >= MaxPathLength {
		return fmt.Errorf("%w: %d code units, limit %d", ErrPathTooLong, n, MaxPathLength-1)
	}
	return nil
}

// IsVolumeRoot reports whether path names the root of its volume.
func IsVolumeRoot(path string) bool {
	return path == "" || path == "/"
}

// GotoParentDir strips the last non-empty segment of path. The result keeps
// its trailing separator.
func GotoParentDir(path string) (string, error) {
	if IsVolumeRoot(path) {
		return "", fmt.Errorf("%w: %q has no parent", ErrInvalidOperation, path)
	}
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: %q has no parent", ErrInvalidOperation, path)
	}
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return "/", nil
	}
	return trimmed[:i+1], nil
}

// GotoSubDir appends name as a directory segment of path.
func GotoSubDir(path, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.Contains(strings.TrimSuffix(name, "/"), "/") {
		return "", fmt.Errorf("%w: bad directory name %q", ErrInvalidOperation, name)
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	next := path + name
	if !strings.HasSuffix(next, "/") {
		next += "/"
	}
	if err := checkLen(next); err != nil {
		return "", err
	}
	return next, nil
}

// JoinPath builds the path of entry name inside directory dir.
func JoinPath(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidOperation)
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	p := dir + name
	if err := checkLen(p); err != nil {
		return "", err
	}
	return p, nil
}

// DisplayName truncates name to width runes for a fixed column.
func DisplayName(name string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(name)
	if len(r) <= width {
		return name
	}
	return string(r[:width])
}

package protocols

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrResourceExhausted = errors.New("out of resource")
)

// mapOSError translates host filesystem errors into the volume error set.
func mapOSError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s: %w: %v", op, path, ErrNotFound, err)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%s %s: %w: %v", op, path, ErrAlreadyExists, err)
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EFBIG), errors.Is(err, syscall.EDQUOT):
		return fmt.Errorf("%s %s: %w: %v", op, path, ErrResourceExhausted, err)
	}
	return fmt.Errorf("%s %s: %w", op, path, err)
}

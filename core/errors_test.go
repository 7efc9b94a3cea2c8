package core

import (
	"errors"
	"fmt"
	"testing"

	"dualpane/protocols"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{fmt.Errorf("stat /x: %w", protocols.ErrNotFound), KindNotFound},
		{fmt.Errorf("mkdir: %w", protocols.ErrAlreadyExists), KindAlreadyExists},
		{fmt.Errorf("delete: %w", ErrUserCancelled), KindUserCancelled},
		{fmt.Errorf("write: %w", protocols.ErrResourceExhausted), KindResourceExhausted},
		{ErrPathTooLong, KindInvalidOperation},
		{ErrInvalidOperation, KindInvalidOperation},
		{errors.New("connection refused"), KindStorageFailure},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

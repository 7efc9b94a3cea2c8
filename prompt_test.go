package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestTerminalConfirm(t *testing.T) {
	tests := []struct {
		input string
		yes   bool
		want  []bool
	}{
		{"y\nn\n", false, []bool{true, false}},
		{"YES\n\n", false, []bool{true, false}},
		{"", false, []bool{false, false}},
		{"", true, []bool{true, true}},
		{"nope\ny", false, []bool{false, true}},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := newTerminalConfirm(strings.NewReader(tt.input), &out, tt.yes)
		got := []bool{c.ConfirmOverwrite("/save.dat"), c.ConfirmDelete("/save")}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("input %q yes=%v: answer %d = %v, want %v", tt.input, tt.yes, i, got[i], tt.want[i])
			}
		}
		if !strings.Contains(out.String(), "/save.dat already exists") {
			t.Errorf("prompt output = %q", out.String())
		}
	}
}

func TestNotifyResourceExhausted(t *testing.T) {
	var out bytes.Buffer
	newTerminalConfirm(strings.NewReader(""), &out, false).NotifyResourceExhausted("/big.bin")
	if !strings.Contains(out.String(), "/big.bin") {
		t.Errorf("output = %q", out.String())
	}
}

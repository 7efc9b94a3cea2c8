package core

import "testing"

func TestStackLIFO(t *testing.T) {
	var s Stack
	if _, ok := s.Pop(); ok {
		t.Fatal("Pop on empty stack reported ok")
	}
	s.Push(0, 3)
	s.Push(5, 7)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	want := []Frame{{5, 7}, {0, 3}}
	for _, w := range want {
		f, ok := s.Pop()
		if !ok || f != w {
			t.Errorf("Pop() = %+v, %v, want %+v, true", f, ok, w)
		}
	}
	s.Push(1, 1)
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", s.Len())
	}
}

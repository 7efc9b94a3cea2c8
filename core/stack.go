package core

// Frame is the cursor state to restore when leaving a directory.
type Frame struct {
	OffsetID   int
	SelectedID int
}

// Stack is the per-pane navigation history, one frame per directory entered
// below the pane root.
type Stack struct {
	frames []Frame
}

func (s *Stack) Push(offsetID, selectedID int) {
	s.frames = append(s.frames, Frame{OffsetID: offsetID, SelectedID: selectedID})
}

// Pop removes the latest frame. ok is false on an empty stack.
func (s *Stack) Pop() (f Frame, ok bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	f = s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

func (s *Stack) Len() int {
	return len(s.frames)
}

func (s *Stack) Reset() {
	s.frames = nil
}

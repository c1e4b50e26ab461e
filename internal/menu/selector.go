// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Package menu implements list selection: a pure Selector state machine and
// a bubbletea component that renders it.
package menu

// Key is a terminal-independent key event understood by the Selector.
type Key int

const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyEnter
	KeyEscape
	KeyDigit1
	KeyDigit2
	KeyDigit3
	KeyDigit4
	KeyDigit5
	KeyDigit6
	KeyDigit7
	KeyDigit8
	KeyDigit9
)

// Digit returns the key for the digit d (1-9) and KeyOther otherwise.
func Digit(d int) Key {
	if d < 1 || d > 9 {
		return KeyOther
	}
	return KeyDigit1 + Key(d-1)
}

// digit returns 1-9 for digit keys and 0 for every other key.
func (k Key) digit() int {
	if k < KeyDigit1 || k > KeyDigit9 {
		return 0
	}
	return int(k-KeyDigit1) + 1
}

// State is the selection state of a Selector.
type State int

const (
	Displaying State = iota
	Selected
	Cancelled
)

func (s State) String() string {
	switch s {
	case Selected:
		return "selected"
	case Cancelled:
		return "cancelled"
	default:
		return "displaying"
	}
}

// Selector tracks the highlighted index over a fixed number of items.
// Selected and Cancelled are terminal; further keys are ignored until Reset.
type Selector struct {
	count     int
	index     int
	state     State
	shortcuts bool
}

// NewSelector returns a selector over count items. With shortcuts enabled the
// digit keys 1-9 select the matching item directly.
func NewSelector(count int, shortcuts bool) *Selector {
	if count < 0 {
		count = 0
	}
	return &Selector{count: count, shortcuts: shortcuts}
}

// Handle applies one key and returns the resulting state.
func (s *Selector) Handle(k Key) State {
	if s.state != Displaying {
		return s.state
	}
	switch k {
	case KeyEscape:
		s.state = Cancelled
	case KeyUp:
		if s.count > 0 {
			s.index = (s.index - 1 + s.count) % s.count
		}
	case KeyDown:
		if s.count > 0 {
			s.index = (s.index + 1) % s.count
		}
	case KeyEnter:
		if s.count > 0 {
			s.state = Selected
		}
	default:
		if d := k.digit(); d > 0 && s.shortcuts && d <= s.count {
			s.index = d - 1
			s.state = Selected
		}
	}
	return s.state
}

// Index returns the highlighted index, or the selected one once Selected.
func (s *Selector) Index() int { return s.index }

// State returns the current state.
func (s *Selector) State() State { return s.state }

// Count returns the number of items.
func (s *Selector) Count() int { return s.count }

// Shortcuts reports whether digit shortcuts are enabled.
func (s *Selector) Shortcuts() bool { return s.shortcuts }

// Reset returns the selector to Displaying over count items. The highlight
// is kept where it was when it still points at an item.
func (s *Selector) Reset(count int) {
	if count < 0 {
		count = 0
	}
	s.count = count
	s.state = Displaying
	if s.index >= count {
		s.index = 0
	}
}

// SetIndex moves the highlight to i if it is in range.
func (s *Selector) SetIndex(i int) {
	if i >= 0 && i < s.count {
		s.index = i
	}
}

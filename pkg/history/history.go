// Package history is the session history of a headless page.
//
// It mirrors the browser model: Push adds an entry after the current one
// and drops any forward entries, Back and Forward move the cursor and
// return the entry to restore.
package history

import "sync"

// Stack is a session history. The zero value is empty.
type Stack struct {
	mu      sync.Mutex
	entries []string
	cursor  int
}

// Push records url as the new current entry.
func (s *Stack) Push(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) > 0 {
		s.entries = s.entries[:s.cursor+1]
	}
	s.entries = append(s.entries, url)
	s.cursor = len(s.entries) - 1
}

// Current returns the current entry.
func (s *Stack) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return "", false
	}
	return s.entries[s.cursor], true
}

// Back moves one entry back.
func (s *Stack) Back() (string, bool) {
	return s.move(-1)
}

// Forward moves one entry forward.
func (s *Stack) Forward() (string, bool) {
	return s.move(1)
}

// move shifts the cursor by delta and returns the new current entry. It
// reports false and stays put when the move would leave the stack.
func (s *Stack) move(delta int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cursor + delta
	if len(s.entries) == 0 || next < 0 || next >= len(s.entries) {
		return "", false
	}
	s.cursor = next
	return s.entries[next], true
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

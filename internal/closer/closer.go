// Package closer tears down resources in the reverse order they were acquired.
package closer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

type Closer func() error

type entry struct {
	id     int
	name   string
	closer Closer
}

// Stack is a LIFO registry of closers. The zero value is ready to use.
type Stack struct {
	mu      sync.Mutex
	lastID  int
	closers []entry
}

// Add registers closer under name and returns its id.
func (s *Stack) Add(name string, closer Closer) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	s.closers = append(s.closers, entry{id: s.lastID, name: name, closer: closer})
	return s.lastID
}

// Remove forgets the closers without running them.
func (s *Stack) Remove(ids ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if i := s.index(id); i >= 0 {
			s.closers = append(s.closers[:i], s.closers[i+1:]...)
		}
	}
}

// Close runs the closers with the given ids right away.
func (s *Stack) Close(ids ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		i := s.index(id)
		if i < 0 {
			errs = append(errs, fmt.Errorf("closer %d: not found", id))
			continue
		}

		e := s.closers[i]
		s.closers = append(s.closers[:i], s.closers[i+1:]...)
		if err := e.closer(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}

	return errors.Join(errs...)
}

// CloseAll runs every closer, newest first, and empties the stack. A failing
// closer does not stop the ones after it.
func (s *Stack) CloseAll() error {
	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		e := closers[i]
		if err := e.closer(); err != nil {
			slog.Warn("Failed to close", "name", e.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}

	return errors.Join(errs...)
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.closers)
}

func (s *Stack) index(id int) int {
	for i, e := range s.closers {
		if e.id == id {
			return i
		}
	}
	return -1
}

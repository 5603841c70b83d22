package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator produces deterministic correlation identifiers for tests.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator that yields identifiers with the given
// prefix. When prefix is empty, "scan" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "scan"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// EmployeeIDSequence hands out badge numbers. Employee ids are operator
// assigned integers, so tests need a sequence that never repeats.
type EmployeeIDSequence struct {
	mu   sync.Mutex
	next int64
}

// NewEmployeeIDSequence starts a sequence at start. Negative starts are clamped
// to zero.
func NewEmployeeIDSequence(start int64) *EmployeeIDSequence {
	if start < 0 {
		start = 0
	}
	return &EmployeeIDSequence{next: start}
}

// Next returns the next employee id.
func (s *EmployeeIDSequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return id
}

// Badge returns the next employee id formatted the way a scanner reports it.
func (s *EmployeeIDSequence) Badge() (int64, string) {
	id := s.Next()
	return id, fmt.Sprintf("%d", id)
}

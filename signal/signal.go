// Package signal provides named, synchronous signals with ordered receivers.
//
//	var declared = signal.New[*Model]("declared")
//
//	disconnect := declared.Connect(func(m *Model) error {
//	    log.Println("declared", m.Name)
//	    return nil
//	})
//	defer disconnect()
//
//	err := declared.Send(m)
package signal

import (
	"errors"
	"fmt"
	"sync"
)

// Receiver handles a value sent on a signal.
type Receiver[T any] func(T) error

// Signal dispatches values to its connected receivers in connect order.
type Signal[T any] struct {
	name      string
	mu        sync.Mutex
	seq       int
	receivers []entry[T]
}

type entry[T any] struct {
	id int
	fn Receiver[T]
}

// New returns a new signal with the given name.
func New[T any](name string) *Signal[T] {
	return &Signal[T]{name: name}
}

// Name returns the signal name.
func (s *Signal[T]) Name() string {
	return s.name
}

// Connect adds a receiver to the signal and returns a function that
// disconnects it. Calling the disconnect function more than once is a no-op.
func (s *Signal[T]) Connect(fn Receiver[T]) (disconnect func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := s.seq
	s.receivers = append(s.receivers, entry[T]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.receivers {
			if e.id == id {
				s.receivers = append(s.receivers[:i:i], s.receivers[i+1:]...)
				return
			}
		}
	}
}

// Receivers returns the number of connected receivers.
func (s *Signal[T]) Receivers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.receivers)
}

// Send calls every receiver with v. All receivers run even if some fail;
// their errors are joined.
func (s *Signal[T]) Send(v T) error {
	s.mu.Lock()
	receivers := make([]entry[T], len(s.receivers))
	copy(receivers, s.receivers)
	s.mu.Unlock()

	var errs []error
	for _, e := range receivers {
		if err := e.fn(v); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("signal %s: %w", s.name, err)
	}
	return nil
}

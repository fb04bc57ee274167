// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package signals

import (
	"sync"
)

// Disposer removes a subscription. Calling it more than once is a no-op.
type Disposer func()

// Signal is a stateless broadcast of events of type T.
type Signal[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// NewSignal returns a signal with no subscribers.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Subscribe registers fn. Callbacks run synchronously on the emitting
// goroutine in subscription order. Deliveries of concurrent Emit calls may
// interleave.
func (s *Signal[T]) Subscribe(fn func(T)) Disposer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

// Emit delivers v to every current subscriber.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Len returns the number of live subscriptions.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Signal[T]) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Value is an observable value. Subscribers are notified only when Set
// changes it.
type Value[T comparable] struct {
	mu      sync.RWMutex
	v       T
	changed *Signal[T]
}

// NewValue returns a value holding initial.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{v: initial, changed: NewSignal[T]()}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Set stores x and reports whether it differed from the previous value.
func (v *Value[T]) Set(x T) bool {
	v.mu.Lock()
	if v.v == x {
		v.mu.Unlock()
		return false
	}
	v.v = x
	v.mu.Unlock()

	v.changed.Emit(x)
	return true
}

// Subscribe registers fn for changes. The current value is not replayed.
func (v *Value[T]) Subscribe(fn func(T)) Disposer {
	return v.changed.Subscribe(fn)
}

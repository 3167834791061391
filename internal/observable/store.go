// Package observable gives an owner a set of named properties whose writes are
// broadcast synchronously to registered watchers.
//
// It is intentionally small: point-to-point notification, no dependency graph,
// no batching and no async scheduling. Owners expose explicit setter methods
// that call Set (or Stage/Flush when they must order writes under their own
// lock) rather than relying on any form of interception.
package observable

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler receives the new value of a watched property.
type Handler func(value any)

type registration struct {
	fn     Handler
	active atomic.Bool
}

type change struct {
	name  string
	value any
}

// Store holds named property values and their watchers.
// The zero value is not usable; construct with New.
type Store struct {
	mu          sync.Mutex
	values      map[string]any
	watchers    map[string][]*registration
	pending     []change
	dispatching bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		values:   make(map[string]any),
		watchers: make(map[string][]*registration),
	}
}

// Get returns the current value of name and whether it has ever been set.
func (s *Store) Get(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// Snapshot returns a copy of every property value.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Set stores value under name and notifies the watchers of name, in
// registration order, if the value changed. Writing an equal value is a no-op.
func (s *Store) Set(name string, value any) {
	if s.Stage(name, value) {
		s.Flush()
	}
}

// Stage stores value and queues its notification without delivering it.
// It reports whether the value changed. Callers must call Flush afterwards,
// typically once they have released their own locks.
func (s *Store) Stage(name string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.values[name]
	if ok && same(cur, value) {
		return false
	}
	if !ok && value == nil {
		return false
	}
	s.values[name] = value
	s.pending = append(s.pending, change{name: name, value: value})
	return true
}

// Flush delivers queued notifications in the order they were staged.
//
// Only one goroutine dispatches at a time. A Set made from inside a watcher, or
// from another goroutine while a dispatch runs, is queued and delivered by the
// running dispatcher after the current watcher list completes.
func (s *Store) Flush() {
	s.mu.Lock()
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	s.mu.Unlock()

	done := false
	defer func() {
		if !done {
			// a watcher panicked; let the next Flush pick up what is left
			s.mu.Lock()
			s.dispatching = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.pending = nil
			s.dispatching = false
			s.mu.Unlock()
			done = true
			return
		}
		c := s.pending[0]
		s.pending = s.pending[1:]
		regs := append([]*registration(nil), s.watchers[c.name]...)
		s.mu.Unlock()

		for _, r := range regs {
			if r.active.Load() {
				r.fn(c.value)
			}
		}
	}
}

// Watch registers fn for every future change of name. If name currently holds
// a non-nil value, fn is called once with it before Watch returns, unless a
// change to name is still queued for dispatch; fn then sees only that change.
// The returned cancel func removes the registration; it is safe to call more
// than once.
func (s *Store) Watch(name string, fn Handler) (cancel func()) {
	r := &registration{fn: fn}
	r.active.Store(true)

	s.mu.Lock()
	s.watchers[name] = append(s.watchers[name], r)
	cur, ok := s.values[name]
	for _, c := range s.pending {
		if c.name == name {
			ok = false
			break
		}
	}
	s.mu.Unlock()

	if ok && cur != nil {
		fn(cur)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.active.Store(false)
			s.mu.Lock()
			defer s.mu.Unlock()
			regs := s.watchers[name]
			for i, x := range regs {
				if x == r {
					s.watchers[name] = append(regs[:i:i], regs[i+1:]...)
					break
				}
			}
			if len(s.watchers[name]) == 0 {
				delete(s.watchers, name)
			}
		})
	}
}

// WatcherCount returns the number of live registrations for name.
func (s *Store) WatcherCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers[name])
}

// WatchAs is Watch with a typed handler. Values of another type are ignored.
func WatchAs[T any](s *Store, name string, fn func(T)) (cancel func()) {
	return s.Watch(name, func(v any) {
		if t, ok := v.(T); ok {
			fn(t)
		}
	})
}

// same reports strict equality. Values whose dynamic type cannot be compared
// (maps, slices, funcs) never compare equal, so writing one always notifies.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

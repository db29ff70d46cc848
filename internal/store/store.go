// Package store holds the extracted weeks and the current-week cursor.
package store

import (
	"iter"
	"sync"

	"github.com/verte-zerg/weekboard/internal/model"
)

// EventKind identifies a store mutation.
type EventKind string

// Store event kinds.
const (
	EventRebuild EventKind = "weeks"
	EventSelect  EventKind = "select"
)

// Event describes a mutation delivered to subscribers. Events arrive in
// mutation order and carry the state right after that mutation.
type Event struct {
	Kind    EventKind
	Len     int
	Current int
}

// Store keeps the ordered weeks of the latest successful load. The current
// index is always within range, or -1 when the store is empty.
type Store struct {
	// writeMu serializes a mutation with its notification.
	writeMu sync.Mutex
	mu      sync.RWMutex
	weeks   []model.Week
	current int

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// New returns an empty store.
func New() *Store {
	return &Store{current: -1, subs: map[int]func(Event){}}
}

// Rebuild replaces all weeks and selects the last one.
func (s *Store) Rebuild(weeks []model.Week) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.weeks = append([]model.Week(nil), weeks...)
	s.current = len(s.weeks) - 1
	ev := Event{Kind: EventRebuild, Len: len(s.weeks), Current: s.current}
	s.mu.Unlock()
	s.notify(ev)
}

// Select makes index current. Out-of-range indexes are ignored.
func (s *Store) Select(index int) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	if index < 0 || index >= len(s.weeks) {
		s.mu.Unlock()
		return false
	}
	changed := s.current != index
	s.current = index
	ev := Event{Kind: EventSelect, Len: len(s.weeks), Current: index}
	s.mu.Unlock()
	if changed {
		s.notify(ev)
	}
	return true
}

// Current returns the selected week.
func (s *Store) Current() (model.Week, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current < 0 {
		return model.Week{}, false
	}
	return s.weeks[s.current], true
}

// Previous returns the week before the selected one.
func (s *Store) Previous() (model.Week, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current <= 0 {
		return model.Week{}, false
	}
	return s.weeks[s.current-1], true
}

// At returns the week at index.
func (s *Store) At(index int) (model.Week, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.weeks) {
		return model.Week{}, false
	}
	return s.weeks[index], true
}

// CurrentIndex returns the selected index, -1 when empty.
func (s *Store) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Len returns the number of weeks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.weeks)
}

// Weeks returns a copy of all weeks in order.
func (s *Store) Weeks() []model.Week {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Week(nil), s.weeks...)
}

// All iterates the weeks in order. Each iteration starts from the sequence
// stored at that moment, so the iterator can be reused after a Rebuild.
func (s *Store) All() iter.Seq2[int, model.Week] {
	return func(yield func(int, model.Week) bool) {
		for i, w := range s.Weeks() {
			if !yield(i, w) {
				return
			}
		}
	}
}

// Subscribe registers fn for store events and returns a function that
// removes it. fn runs on the mutating goroutine and must not block or
// mutate the store; reads are fine.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

package client

import (
	"sync"
)

// Filter selects which records a Query returns.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
	FilterRead   Filter = "read"
)

// DefaultBound is the notification cap when Options.Bound is unset.
const DefaultBound = 100

// Store is the bounded, ordered collection of notification records for one
// session. Newest records sit at the front; when the bound is exceeded the
// oldest are evicted from the tail. Records are mutated only through the
// store's own methods, so Query hands out copies.
type Store struct {
	mu      sync.Mutex
	records []*Record
	index   map[string]*Record
	bound   int
	unread  int
}

// NewStore creates a store holding at most bound records. A bound of zero or
// less falls back to DefaultBound.
func NewStore(bound int) *Store {
	if bound <= 0 {
		bound = DefaultBound
	}
	return &Store{
		index: make(map[string]*Record),
		bound: bound,
	}
}

// Insert prepends rec unless a record with the same ID already exists.
// Returns false on a duplicate. Evicts from the tail once over the bound.
func (s *Store) Insert(rec Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[rec.ID]; exists {
		return false
	}

	r := rec
	s.records = append([]*Record{&r}, s.records...)
	s.index[r.ID] = &r
	if !r.Read {
		s.unread++
	}

	for len(s.records) > s.bound {
		last := s.records[len(s.records)-1]
		s.records = s.records[:len(s.records)-1]
		delete(s.index, last.ID)
		if !last.Read {
			s.unread--
		}
	}
	return true
}

// MarkRead marks one record read. No-op when the id is unknown or the record
// is already read; read transitions never go the other way.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.index[id]
	if !ok || rec.Read {
		return false
	}
	rec.Read = true
	s.unread--
	return true
}

// MarkAllRead marks every unread record read and returns how many changed.
func (s *Store) MarkAllRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, rec := range s.records {
		if !rec.Read {
			rec.Read = true
			changed++
		}
	}
	s.unread = 0
	return changed
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.index = make(map[string]*Record)
	s.unread = 0
}

// Query returns a snapshot of the records matching filter, newest first.
func (s *Store) Query(filter Filter) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		switch filter {
		case FilterUnread:
			if rec.Read {
				continue
			}
		case FilterRead:
			if !rec.Read {
				continue
			}
		}
		out = append(out, *rec)
	}
	return out
}

// UnreadCount returns the number of unread records. Maintained incrementally,
// never recomputed by scan.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Len returns the total number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

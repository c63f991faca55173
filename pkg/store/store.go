package store

import (
	"errors"
	"slices"
	"sync"

	"github.com/racetelemetry/laprecorder/pkg/model"
)

var ErrNotFound = errors.New("lap not found")

// LapStore is the append-only list of completed laps of a session.
// Records are never removed, the store grows for the lifetime of the session.
type LapStore struct {
	mu   sync.RWMutex
	laps []*model.LapRecord
}

func New() *LapStore {
	return &LapStore{laps: make([]*model.LapRecord, 0)}
}

// Append publishes r. The record must be complete, it is visible to readers immediately.
func (s *LapStore) Append(r *model.LapRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.laps = append(s.laps, r)
}

func (s *LapStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.laps)
}

// All returns a snapshot of the records in append order.
func (s *LapStore) All() []*model.LapRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.laps)
}

// Get returns the record with the 1-based index.
func (s *LapStore) Get(index int) (*model.LapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 1 || index > len(s.laps) {
		return nil, ErrNotFound
	}
	return s.laps[index-1], nil
}

// Latest returns the most recent record.
func (s *LapStore) Latest() (*model.LapRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.laps) == 0 {
		return nil, false
	}
	return s.laps[len(s.laps)-1], true
}

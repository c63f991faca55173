package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racetelemetry/laprecorder/pkg/model"
)

func TestAppendAndGet(t *testing.T) {
	s := New()
	_, ok := s.Latest()
	assert.False(t, ok)

	for i := 1; i <= 3; i++ {
		s.Append(&model.LapRecord{Index: i})
	}
	assert.Equal(t, 3, s.Len())

	r, err := s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Index)

	_, err = s.Get(0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(4)
	assert.ErrorIs(t, err, ErrNotFound)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 3, latest.Index)
}

func TestAllIsSnapshot(t *testing.T) {
	s := New()
	s.Append(&model.LapRecord{Index: 1})
	all := s.All()
	s.Append(&model.LapRecord{Index: 2})
	assert.Len(t, all, 1)
	assert.Len(t, s.All(), 2)
}

func TestConcurrentReaders(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				for i, r := range s.All() {
					if r == nil || r.Index != i+1 {
						t.Errorf("unexpected record at %d", i)
						return
					}
				}
			}
		}()
	}
	for i := 1; i <= 1000; i++ {
		s.Append(&model.LapRecord{Index: i})
	}
	wg.Wait()
	assert.Equal(t, 1000, s.Len())
}

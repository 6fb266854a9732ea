package monitor

import (
	"sync"
	"time"

	"github.com/five82/daily/internal/api"
)

// Snapshot is the latest data available to the UI.
type Snapshot struct {
	Status              api.StatusResponse
	HasStatus           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline reports whether the daemon has missed several polls in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records a poll result. On error the previous status is kept.
func (s *Store) Update(status *api.StatusResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	if status != nil {
		s.snapshot.Status = *status
		s.snapshot.Status.Logs = append([]string(nil), status.Logs...)
		s.snapshot.HasStatus = true
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy that shares nothing mutable with the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Status.Logs = append([]string(nil), s.snapshot.Status.Logs...)
	return snap
}

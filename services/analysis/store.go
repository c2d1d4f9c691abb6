// Package analysis tracks submitted analyses through their lifecycle and
// runs the agent pipeline for each one in the background.
package analysis

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sapiens-platform/sapiens/models"
)

// ErrNotFound is returned when an analysis id is unknown.
var ErrNotFound = fmt.Errorf("análise não encontrada")

// Store keeps the in-memory state of every analysis. All access goes
// through the store's mutex; callers never hold a reference to the live
// record, only to copies.
type Store struct {
	mu       sync.RWMutex
	analyses map[uuid.UUID]*models.Analysis
}

// NewStore creates an empty analysis store.
func NewStore() *Store {
	return &Store{
		analyses: make(map[uuid.UUID]*models.Analysis),
	}
}

// Create registers a new analysis for topic and returns a copy of it.
func (s *Store) Create(topic string) *models.Analysis {
	a := models.NewAnalysis(topic)

	s.mu.Lock()
	s.analyses[a.ID] = a
	s.mu.Unlock()

	return snapshot(a)
}

// Get returns a copy of the analysis with the given id.
func (s *Store) Get(id uuid.UUID) (*models.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.analyses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(a), nil
}

// Update applies fn to the analysis under the store lock so read-modify-write
// sequences are atomic. Once an analysis reaches a terminal status further
// updates are rejected, keeping completed and error states sticky.
func (s *Store) Update(id uuid.UUID, fn func(*models.Analysis)) (*models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.analyses[id]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Status.Terminal() {
		return nil, fmt.Errorf("análise %s já finalizada com status %s", id, a.Status)
	}

	fn(a)
	a.UpdatedAt = time.Now()
	if a.Status.Terminal() && a.EndedAt == nil {
		now := a.UpdatedAt
		a.EndedAt = &now
	}
	return snapshot(a), nil
}

// List returns copies of every tracked analysis.
func (s *Store) List() []*models.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		out = append(out, snapshot(a))
	}
	return out
}

// Len returns how many analyses are tracked.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.analyses)
}

// snapshot deep-copies an analysis so callers cannot mutate stored state.
func snapshot(a *models.Analysis) *models.Analysis {
	cp := *a
	cp.Files = make([]models.AnalysisFile, len(a.Files))
	copy(cp.Files, a.Files)
	if a.EndedAt != nil {
		ended := *a.EndedAt
		cp.EndedAt = &ended
	}
	return &cp
}

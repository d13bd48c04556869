package store

import (
	"sync"

	"MarketLens/internal/domain/models"
)

// Store is the single coordinating owner of the dataset snapshot and the
// operator's selection. The dataset mutates only by whole-value replacement
// under the lock, so a partially built batch is never observable; readers
// always get a complete snapshot.
type Store struct {
	mu  sync.RWMutex
	ds  *models.Dataset
	sel models.Selection
}

// New creates a store holding an empty dataset and the default selection.
func New() *Store {
	return &Store{
		ds:  models.EmptyDataset(),
		sel: models.DefaultSelection(),
	}
}

// Snapshot returns the current dataset. The value is immutable once
// published and safe to read without coordination.
func (s *Store) Snapshot() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// Replace swaps in a fully built dataset. Selection is kept as-is; a now
// stale product or day simply yields empty views until the caller re-derives
// a default from the new selector options.
func (s *Store) Replace(ds *models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
}

// Selection returns the current selection.
func (s *Store) Selection() models.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

// UpdateSelection replaces the fields present in req and returns the result.
func (s *Store) UpdateSelection(req models.SelectionRequest) models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Product != nil {
		s.sel.Product = *req.Product
	}
	if req.Day != nil {
		s.sel.Day = *req.Day
	}
	if req.Fraction != nil {
		s.sel.Fraction = *req.Fraction
	}
	return s.sel
}

package store

import (
	"sync"
	"testing"
	"time"

	"MarketLens/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHoldsEmptyDatasetAndDefaultSelection(t *testing.T) {
	s := New()
	ds := s.Snapshot()
	require.NotNil(t, ds)
	assert.Zero(t, ds.Rows())

	sel := s.Selection()
	assert.Empty(t, sel.Product)
	assert.Equal(t, 1.0, sel.Fraction)
}

func TestReplaceSwapsWholeSnapshot(t *testing.T) {
	s := New()
	old := s.Snapshot()

	ds := models.EmptyDataset()
	ds.Prices = []models.PriceRecord{{Product: "KELP", Day: "0"}}
	ds.LoadedAt = time.Now()
	s.Replace(ds)

	got := s.Snapshot()
	assert.NotSame(t, old, got)
	require.Len(t, got.Prices, 1)
	// a snapshot taken before the replacement is unaffected
	assert.Empty(t, old.Prices)
}

func TestReplaceKeepsSelection(t *testing.T) {
	s := New()
	p, d := "KELP", "2"
	s.UpdateSelection(models.SelectionRequest{Product: &p, Day: &d})

	s.Replace(models.EmptyDataset())

	sel := s.Selection()
	assert.Equal(t, "KELP", sel.Product)
	assert.Equal(t, "2", sel.Day)
}

func TestUpdateSelectionPartial(t *testing.T) {
	s := New()
	p := "SQUID"
	sel := s.UpdateSelection(models.SelectionRequest{Product: &p})
	assert.Equal(t, "SQUID", sel.Product)
	assert.Equal(t, 1.0, sel.Fraction)

	f := 0.25
	sel = s.UpdateSelection(models.SelectionRequest{Fraction: &f})
	// earlier fields survive an update that does not mention them
	assert.Equal(t, "SQUID", sel.Product)
	assert.Equal(t, 0.25, sel.Fraction)

	// explicit zero fraction is a real value, not a missing one
	zero := 0.0
	sel = s.UpdateSelection(models.SelectionRequest{Fraction: &zero})
	assert.Equal(t, 0.0, sel.Fraction)
}

func TestConcurrentReplaceAndSnapshot(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ds := models.EmptyDataset()
				ds.Prices = []models.PriceRecord{{Product: "KELP", Day: "0"}}
				s.Replace(ds)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ds := s.Snapshot()
				// snapshots are always complete: zero or one row, never torn
				assert.LessOrEqual(t, len(ds.Prices), 1)
			}
		}()
	}
	wg.Wait()
}

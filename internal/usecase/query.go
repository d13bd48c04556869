package usecase

import (
	"context"
	"sort"
	"time"

	"MarketLens/internal/domain/models"
	drepo "MarketLens/internal/domain/repository"
	"MarketLens/pkg/cache"
	"MarketLens/pkg/logger"
)

var viewKeyPattern = cache.BuildPattern("view:")

// QueryEngine computes selector indexes, filtered time-sliced views, and
// derived chart series. The computations are pure functions over an immutable
// dataset snapshot; the engine only adds caching and instrumentation on top.
type QueryEngine struct {
	cache   drepo.ViewCache
	metrics drepo.Metrics
	logger  *logger.Logger
	viewTTL time.Duration
}

// NewQueryEngine creates a QueryEngine backed by the given view cache.
func NewQueryEngine(c drepo.ViewCache, m drepo.Metrics, l *logger.Logger, viewTTL time.Duration) *QueryEngine {
	if viewTTL <= 0 {
		viewTTL = 5 * time.Minute
	}
	return &QueryEngine{cache: c, metrics: m, logger: l, viewTTL: viewTTL}
}

// BuildIndexes computes the selector indexes from the price collection:
// distinct non-empty products in lexicographic order, distinct non-empty days
// in numeric order. Trades never contribute selector options.
func BuildIndexes(prices []models.PriceRecord) (products, days []string) {
	seenP := make(map[string]struct{})
	seenD := make(map[string]struct{})
	for _, r := range prices {
		if r.Product != "" {
			if _, ok := seenP[r.Product]; !ok {
				seenP[r.Product] = struct{}{}
				products = append(products, r.Product)
			}
		}
		if r.Day != "" {
			if _, ok := seenD[r.Day]; !ok {
				seenD[r.Day] = struct{}{}
				days = append(days, r.Day)
			}
		}
	}
	sort.Strings(products)
	sort.Slice(days, func(i, j int) bool {
		return drepo.NumOrNaN(days[i]) < drepo.NumOrNaN(days[j])
	})
	return products, days
}

// Options returns the selector options held on the snapshot. They were
// computed at ingest time and never change between ingestions.
func (q *QueryEngine) Options(ds *models.Dataset) models.SelectorOptions {
	return models.SelectorOptions{Products: ds.Products, Days: ds.Days}
}

// Query produces the three filtered, independently time-sliced collections
// for the selection. A stale product or day yields empty slices, not an
// error; an out-of-range fraction is clamped.
func (q *QueryEngine) Query(ctx context.Context, ds *models.Dataset, sel models.Selection) *models.View {
	start := time.Now()
	sel.Fraction = ClampFraction(sel.Fraction)

	key := cache.GenerateKeyWithParams("view", ds.LoadedAt.UnixNano(), sel.Product, sel.Day, sel.Fraction)
	if q.cache != nil {
		var cached models.View
		if err := q.cache.Get(ctx, key, &cached); err == nil {
			q.metrics.RecordQueryLatency("query_cached", time.Since(start).Seconds())
			return &cached
		}
	}

	view := &models.View{
		Selection:    sel,
		Prices:       sliceByTime(filterPrices(ds.Prices, sel), sel.Fraction),
		MarketTrades: sliceByTime(filterTrades(ds.MarketTrades, sel), sel.Fraction),
		OwnTrades:    sliceByTime(filterTrades(ds.OwnTrades, sel), sel.Fraction),
	}

	if q.cache != nil {
		if err := q.cache.Set(ctx, key, view, q.viewTTL); err != nil {
			q.logger.Warn("view cache set failed", logger.Error(err))
		}
	}
	q.metrics.RecordQueryLatency("query", time.Since(start).Seconds())
	return view
}

// Series derives the named numeric projection from one collection of the
// view. ok is false when the series is entirely absent and should be
// suppressed by the renderer.
func (q *QueryEngine) Series(view *models.View, collection, field string) (models.Series, bool) {
	start := time.Now()
	defer func() {
		q.metrics.RecordQueryLatency("series", time.Since(start).Seconds())
	}()
	switch collection {
	case "market_trades":
		return ExtractSeries(view.MarketTrades, field)
	case "own_trades":
		return ExtractSeries(view.OwnTrades, field)
	default:
		return ExtractSeries(view.Prices, field)
	}
}

// ExtractSeries projects one named field across rows, keeping absent entries
// in place so values stay aligned with the timestamp axis. The second return
// is false when no element is a real number.
func ExtractSeries[T models.FieldRecord](rows []T, field string) (models.Series, bool) {
	s := models.Series{
		Field:      field,
		Timestamps: make([]models.Float, 0, len(rows)),
		Values:     make([]models.Float, 0, len(rows)),
	}
	present := false
	for _, r := range rows {
		v, _ := r.Field(field)
		if v.Valid {
			present = true
		}
		s.Timestamps = append(s.Timestamps, r.Ts())
		s.Values = append(s.Values, v)
	}
	return s, present
}

// ClampFraction forces the time fraction into [0,1]. Out-of-range and NaN
// inputs must never break slicing, so they clamp instead of erroring.
func ClampFraction(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	case f != f: // NaN
		return 1
	default:
		return f
	}
}

func filterPrices(rows []models.PriceRecord, sel models.Selection) []models.PriceRecord {
	out := make([]models.PriceRecord, 0)
	for _, r := range rows {
		if r.Product == sel.Product && r.Day == sel.Day {
			out = append(out, r)
		}
	}
	return out
}

func filterTrades(rows []models.TradeRecord, sel models.Selection) []models.TradeRecord {
	out := make([]models.TradeRecord, 0)
	for _, r := range rows {
		if r.Product == sel.Product && r.Day == sel.Day {
			out = append(out, r)
		}
	}
	return out
}

// sliceByTime cuts rows at fraction of this sequence's own maximum
// timestamp. Absent or non-numeric timestamps count as 0 here only.
func sliceByTime[T models.FieldRecord](rows []T, fraction float64) []T {
	if len(rows) == 0 {
		return rows
	}
	maxTs := 0.0
	for _, r := range rows {
		if ts := r.Ts().Or(0); ts > maxTs {
			maxTs = ts
		}
	}
	cutoff := maxTs * fraction
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if r.Ts().Or(0) <= cutoff {
			out = append(out, r)
		}
	}
	return out
}

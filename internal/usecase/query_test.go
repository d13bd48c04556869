package usecase

import (
	"context"
	"math"
	"testing"

	"MarketLens/internal/domain/models"
	"MarketLens/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *QueryEngine {
	return NewQueryEngine(nil, nopMetrics{}, logger.Nop(), 0)
}

func price(product, day string, ts float64) models.PriceRecord {
	return models.PriceRecord{Product: product, Day: day, Timestamp: models.FloatFrom(ts)}
}

func trade(product, day string, ts float64) models.TradeRecord {
	return models.TradeRecord{Product: product, Day: day, Timestamp: models.FloatFrom(ts)}
}

func TestBuildIndexes(t *testing.T) {
	prices := []models.PriceRecord{
		price("SQUID", "2", 1),
		price("KELP", "0", 1),
		price("SQUID", "1", 1),
		price("KELP", "2", 1),
		{Product: "", Day: "", Timestamp: models.FloatFrom(1)},
	}
	products, days := BuildIndexes(prices)
	assert.Equal(t, []string{"KELP", "SQUID"}, products)
	assert.Equal(t, []string{"0", "1", "2"}, days)
}

func TestBuildIndexesDaysNumericNotLexicographic(t *testing.T) {
	_, days := BuildIndexes([]models.PriceRecord{
		price("A", "10", 1),
		price("A", "2", 1),
		price("A", "-1", 1),
	})
	assert.Equal(t, []string{"-1", "2", "10"}, days)
}

func TestQueryFiltersByProductAndDay(t *testing.T) {
	q := newTestEngine()
	ds := models.EmptyDataset()
	ds.Prices = []models.PriceRecord{
		price("KELP", "0", 10),
		price("KELP", "1", 20),
		price("SQUID", "0", 30),
	}
	ds.MarketTrades = []models.TradeRecord{
		trade("KELP", "0", 15),
		trade("SQUID", "0", 25),
	}

	view := q.Query(context.Background(), ds, models.Selection{Product: "KELP", Day: "0", Fraction: 1})
	require.Len(t, view.Prices, 1)
	assert.Equal(t, models.FloatFrom(10.0), view.Prices[0].Timestamp)
	require.Len(t, view.MarketTrades, 1)
	assert.Empty(t, view.OwnTrades)
}

func TestQueryStaleSelectionYieldsEmptyView(t *testing.T) {
	q := newTestEngine()
	ds := models.EmptyDataset()
	ds.Prices = []models.PriceRecord{price("KELP", "0", 10)}

	view := q.Query(context.Background(), ds, models.Selection{Product: "GONE", Day: "0", Fraction: 1})
	assert.Empty(t, view.Prices)
	assert.Empty(t, view.MarketTrades)
	assert.Empty(t, view.OwnTrades)
}

func TestSliceByTimeBoundaryInclusive(t *testing.T) {
	rows := []models.PriceRecord{
		price("A", "0", 0),
		price("A", "0", 50),
		price("A", "0", 100),
	}
	out := sliceByTime(rows, 0.5)
	// cutoff is 50, boundary row kept
	require.Len(t, out, 2)
	assert.Equal(t, models.FloatFrom(50.0), out[1].Timestamp)

	assert.Len(t, sliceByTime(rows, 1), 3)
	// fraction 0 keeps only ts==0 rows
	assert.Len(t, sliceByTime(rows, 0), 1)
}

func TestSliceByTimePerCollectionCutoffs(t *testing.T) {
	q := newTestEngine()
	ds := models.EmptyDataset()
	ds.Prices = []models.PriceRecord{
		price("KELP", "0", 100),
		price("KELP", "0", 400),
		price("KELP", "0", 1000),
	}
	ds.MarketTrades = []models.TradeRecord{
		trade("KELP", "0", 100),
		trade("KELP", "0", 300),
		trade("KELP", "0", 400),
	}

	view := q.Query(context.Background(), ds, models.Selection{Product: "KELP", Day: "0", Fraction: 0.5})
	// price cutoff 500, trade cutoff 200: each collection slices on its own max
	require.Len(t, view.Prices, 2)
	require.Len(t, view.MarketTrades, 1)
	assert.Equal(t, models.FloatFrom(100.0), view.MarketTrades[0].Timestamp)
}

func TestSliceByTimeAbsentTimestampCountsAsZero(t *testing.T) {
	rows := []models.TradeRecord{
		{Product: "A", Day: "0"}, // no timestamp
		trade("A", "0", 100),
	}
	out := sliceByTime(rows, 0.5)
	require.Len(t, out, 1)
	assert.False(t, out[0].Timestamp.Valid)
}

func TestClampFraction(t *testing.T) {
	assert.Equal(t, 0.0, ClampFraction(-0.5))
	assert.Equal(t, 1.0, ClampFraction(2))
	assert.Equal(t, 1.0, ClampFraction(math.NaN()))
	assert.Equal(t, 0.25, ClampFraction(0.25))
}

func TestExtractSeriesKeepsPositionalNulls(t *testing.T) {
	rows := []models.PriceRecord{
		{Product: "A", Day: "0", Timestamp: models.FloatFrom(1), MidPrice: models.FloatFrom(9.5)},
		{Product: "A", Day: "0", Timestamp: models.FloatFrom(2)},
		{Product: "A", Day: "0", Timestamp: models.FloatFrom(3), MidPrice: models.FloatFrom(9.7)},
	}
	s, present := ExtractSeries(rows, "mid_price")
	require.True(t, present)
	require.Len(t, s.Values, 3)
	assert.True(t, s.Values[0].Valid)
	assert.False(t, s.Values[1].Valid)
	assert.True(t, s.Values[2].Valid)
	assert.Equal(t, models.FloatFrom(2.0), s.Timestamps[1])
}

func TestExtractSeriesSuppressedWhenAllAbsent(t *testing.T) {
	rows := []models.PriceRecord{
		price("A", "0", 1),
		price("A", "0", 2),
	}
	_, present := ExtractSeries(rows, "mid_price")
	assert.False(t, present)

	// unknown field name behaves the same way
	_, present = ExtractSeries(rows, "no_such_field")
	assert.False(t, present)
}

func TestSeriesBookLevels(t *testing.T) {
	q := newTestEngine()
	rec := price("A", "0", 1)
	rec.BidPrice[2] = models.FloatFrom(9.1)
	view := &models.View{Prices: []models.PriceRecord{rec}}

	s, present := q.Series(view, "prices", "bid_price_3")
	require.True(t, present)
	assert.Equal(t, models.FloatFrom(9.1), s.Values[0])

	// levels beyond the stored depth are absent, not an error
	_, present = q.Series(view, "prices", "bid_price_9")
	assert.False(t, present)
}

func TestSeriesTradeCollections(t *testing.T) {
	q := newTestEngine()
	mt := trade("A", "0", 1)
	mt.Price = models.FloatFrom(10)
	ot := trade("A", "0", 2)
	ot.Quantity = models.FloatFrom(3)
	view := &models.View{
		MarketTrades: []models.TradeRecord{mt},
		OwnTrades:    []models.TradeRecord{ot},
	}

	s, present := q.Series(view, "market_trades", "price")
	require.True(t, present)
	assert.Equal(t, models.FloatFrom(10.0), s.Values[0])

	s, present = q.Series(view, "own_trades", "quantity")
	require.True(t, present)
	assert.Equal(t, models.FloatFrom(3.0), s.Values[0])
}

package usecase

import (
	"context"
	"testing"

	"MarketLens/internal/domain/models"
	"MarketLens/internal/service/store"
	"MarketLens/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopMetrics struct{}

func (nopMetrics) RecordRowsIngested(string, int)     {}
func (nopMetrics) RecordRowsDropped(string, int)      {}
func (nopMetrics) RecordIngestError(string)           {}
func (nopMetrics) RecordIngestDuration(float64)       {}
func (nopMetrics) RecordDatasetSize(string, int)      {}
func (nopMetrics) RecordQueryLatency(string, float64) {}

type spyNotifier struct {
	events   []string
	payloads []interface{}
}

func (s *spyNotifier) Broadcast(event string, payload interface{}) {
	s.events = append(s.events, event)
	s.payloads = append(s.payloads, payload)
}

func newTestIngestor(st *store.Store, n *spyNotifier) *Ingestor {
	return NewIngestor(st, nil, nopMetrics{}, n, logger.Nop(), 4)
}

func TestIngestClassifiesAndAggregates(t *testing.T) {
	st := store.New()
	n := &spyNotifier{}
	ing := newTestIngestor(st, n)

	res, err := ing.Ingest(context.Background(), []Source{
		{Name: "prices.csv", Data: []byte("product,day,timestamp,mid_price\nKELP,0,100,9.5\nSQUID,0,200,11\n")},
		{Name: "trades.csv", Data: []byte("product,day,timestamp,price,quantity\nKELP,0,150,9.4,3\n")},
		{Name: "own_trades.csv", Data: []byte("product,day,timestamp,price,quantity\nKELP,0,160,9.6,1\n")},
	}, ',')
	require.NoError(t, err)

	assert.Equal(t, 2, res.PriceRows)
	assert.Equal(t, 1, res.MarketTradeRows)
	assert.Equal(t, 1, res.OwnTradeRows)
	assert.Equal(t, 0, res.DroppedRows)

	ds := st.Snapshot()
	require.Len(t, ds.Prices, 2)
	assert.Equal(t, "KELP", ds.Prices[0].Product)
	assert.Equal(t, models.FloatFrom(9.5), ds.Prices[0].MidPrice)
	require.Len(t, ds.MarketTrades, 1)
	assert.Equal(t, models.FloatFrom(9.4), ds.MarketTrades[0].Price)
	require.Len(t, ds.OwnTrades, 1)
	assert.Equal(t, models.FloatFrom(9.6), ds.OwnTrades[0].Price)

	require.Equal(t, []string{"dataset_replaced"}, n.events)
}

func TestIngestConcatenatesInSubmissionOrder(t *testing.T) {
	st := store.New()
	ing := newTestIngestor(st, &spyNotifier{})

	_, err := ing.Ingest(context.Background(), []Source{
		{Name: "prices_round_2.csv", Data: []byte("product,day,timestamp\nB,1,10\n")},
		{Name: "prices_round_1.csv", Data: []byte("product,day,timestamp\nA,1,20\n")},
	}, ',')
	require.NoError(t, err)

	ds := st.Snapshot()
	require.Len(t, ds.Prices, 2)
	// file order wins over any per-row ordering
	assert.Equal(t, "B", ds.Prices[0].Product)
	assert.Equal(t, "A", ds.Prices[1].Product)
	assert.Equal(t, []string{"prices_round_2.csv", "prices_round_1.csv"}, ds.Sources)
}

func TestIngestDropsShapelessPriceRows(t *testing.T) {
	st := store.New()
	ing := newTestIngestor(st, &spyNotifier{})

	res, err := ing.Ingest(context.Background(), []Source{
		{Name: "prices.csv", Data: []byte(
			"product,day,timestamp,mid_price\n" +
				"KELP,0,100,9.5\n" +
				",0,200,9.6\n" + // empty product cell is omitted, row dropped
				"KELP,0,,9.7\n", // no timestamp
		)},
	}, ',')
	require.NoError(t, err)

	assert.Equal(t, 1, res.PriceRows)
	assert.Equal(t, 2, res.DroppedRows)
	require.Len(t, st.Snapshot().Prices, 1)
}

func TestIngestRejectsWholeBatchOnMalformedFile(t *testing.T) {
	st := store.New()
	n := &spyNotifier{}
	ing := newTestIngestor(st, n)

	_, err := ing.Ingest(context.Background(), []Source{
		{Name: "prices.csv", Data: []byte("product,day,timestamp\nKELP,0,100\n")},
	}, ',')
	require.NoError(t, err)
	require.Len(t, st.Snapshot().Prices, 1)

	_, err = ing.Ingest(context.Background(), []Source{
		{Name: "prices_2.csv", Data: []byte("product,day,timestamp\nSQUID,1,100\n")},
		{Name: "broken.csv", Data: []byte("product,day\n\"unterminated,0\n")},
	}, ',')
	require.Error(t, err)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "broken.csv", srcErr.Source)

	// previous dataset untouched, no replacement event
	ds := st.Snapshot()
	require.Len(t, ds.Prices, 1)
	assert.Equal(t, "KELP", ds.Prices[0].Product)
	assert.Len(t, n.events, 1)
}

func TestIngestEmptyBatchYieldsEmptyDataset(t *testing.T) {
	st := store.New()
	ing := newTestIngestor(st, &spyNotifier{})

	_, err := ing.Ingest(context.Background(), []Source{
		{Name: "prices.csv", Data: []byte("product,day,timestamp\nKELP,0,100\n")},
	}, ',')
	require.NoError(t, err)

	res, err := ing.Ingest(context.Background(), nil, ',')
	require.NoError(t, err)
	assert.Equal(t, 0, res.PriceRows)

	ds := st.Snapshot()
	assert.Empty(t, ds.Prices)
	assert.Empty(t, ds.Products)
	assert.Empty(t, ds.Days)
}

func TestIngestBuildsSelectorIndexesFromPricesOnly(t *testing.T) {
	st := store.New()
	ing := newTestIngestor(st, &spyNotifier{})

	res, err := ing.Ingest(context.Background(), []Source{
		{Name: "prices.csv", Data: []byte(
			"product,day,timestamp\n" +
				"SQUID,2,1\n" +
				"KELP,0,1\n" +
				"SQUID,10,1\n" +
				"KELP,2,1\n",
		)},
		{Name: "trades.csv", Data: []byte("product,day,timestamp,price,quantity\nCRAB,99,1,5,1\n")},
	}, ',')
	require.NoError(t, err)

	// products lexicographic, days numeric; trades contribute nothing
	assert.Equal(t, []string{"KELP", "SQUID"}, res.Options.Products)
	assert.Equal(t, []string{"0", "2", "10"}, res.Options.Days)
}

func TestIngestStringwiseKeys(t *testing.T) {
	st := store.New()
	ing := newTestIngestor(st, &spyNotifier{})

	// numeric-looking day cells compare equal to their canonical string form
	_, err := ing.Ingest(context.Background(), []Source{
		{Name: "prices.csv", Data: []byte("product,day,timestamp\nKELP,7,100\n")},
	}, ',')
	require.NoError(t, err)

	ds := st.Snapshot()
	require.Len(t, ds.Prices, 1)
	assert.Equal(t, "7", ds.Prices[0].Day)
	assert.Equal(t, []string{"7"}, ds.Days)
}

func TestIngestUnparseableCellsAreAbsent(t *testing.T) {
	st := store.New()
	ing := newTestIngestor(st, &spyNotifier{})

	_, err := ing.Ingest(context.Background(), []Source{
		{Name: "prices.csv", Data: []byte("product,day,timestamp,mid_price\nKELP,0,100,n/a\n")},
	}, ',')
	require.NoError(t, err)

	ds := st.Snapshot()
	require.Len(t, ds.Prices, 1)
	assert.False(t, ds.Prices[0].MidPrice.Valid)
	assert.Equal(t, models.FloatFrom(100), ds.Prices[0].Timestamp)
}

package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"MarketLens/internal/domain/models"
	drepo "MarketLens/internal/domain/repository"
	"MarketLens/internal/service/store"
	"MarketLens/pkg/logger"
	"MarketLens/pkg/tabular"
)

// Source is one raw delimited input with its classifying identifier.
type Source struct {
	Name string
	Data []byte
}

// SourceError marks an ingestion batch rejected because of one input.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Ingestor parses, classifies, and aggregates ingestion batches, replacing
// the dataset snapshot wholesale on success. Any file failing to parse
// rejects the whole batch and leaves the previous dataset untouched.
type Ingestor struct {
	store   *store.Store
	cache   drepo.ViewCache
	metrics drepo.Metrics
	notify  drepo.Notifier
	logger  *logger.Logger
	workers int
}

// NewIngestor creates an Ingestor. workers bounds concurrent file parses.
func NewIngestor(
	st *store.Store,
	cache drepo.ViewCache,
	metrics drepo.Metrics,
	notify drepo.Notifier,
	l *logger.Logger,
	workers int,
) *Ingestor {
	if workers < 1 {
		workers = 4
	}
	return &Ingestor{
		store:   st,
		cache:   cache,
		metrics: metrics,
		notify:  notify,
		logger:  l,
		workers: workers,
	}
}

// Ingest runs the full pipeline for one batch: concurrent parse of every
// source, classification by source name, shape filtering, selector index
// computation, and atomic replacement of the dataset.
func (i *Ingestor) Ingest(ctx context.Context, sources []Source, delimiter rune) (*models.IngestResult, error) {
	start := time.Now()

	// Fan out one parse per source; the errgroup is the all-or-nothing
	// barrier, so no aggregation happens until every file parsed.
	parts := make([][]tabular.Row, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for n, src := range sources {
		n, src := n, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := tabular.Read(bytes.NewReader(src.Data), delimiter)
			if err != nil {
				return &SourceError{Source: src.Name, Err: err}
			}
			parts[n] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		i.metrics.RecordIngestError("parse")
		return nil, err
	}

	ds := models.EmptyDataset()
	dropped := 0
	for n, src := range sources {
		ds.Sources = append(ds.Sources, src.Name)
		kind := Classify(src.Name)
		for _, row := range parts[n] {
			switch kind {
			case models.KindPrice:
				// Stray non-price rows in a price-classified file are
				// excluded rather than failing the batch.
				if !row.Has("product") || !row.Has("day") || !row.Has("timestamp") {
					dropped++
					continue
				}
				ds.Prices = append(ds.Prices, buildPrice(row))
			case models.KindMarketTrade:
				ds.MarketTrades = append(ds.MarketTrades, buildTrade(row))
			case models.KindOwnTrade:
				ds.OwnTrades = append(ds.OwnTrades, buildTrade(row))
			}
		}
	}
	ds.Products, ds.Days = BuildIndexes(ds.Prices)

	i.store.Replace(ds)
	if i.cache != nil {
		if err := i.cache.DeleteByPattern(ctx, viewKeyPattern); err != nil {
			i.logger.Warn("view cache invalidation failed", logger.Error(err))
		}
	}
	i.notify.Broadcast("dataset_replaced", models.SelectorOptions{
		Products: ds.Products,
		Days:     ds.Days,
	})

	i.metrics.RecordRowsIngested(string(models.KindPrice), len(ds.Prices))
	i.metrics.RecordRowsIngested(string(models.KindMarketTrade), len(ds.MarketTrades))
	i.metrics.RecordRowsIngested(string(models.KindOwnTrade), len(ds.OwnTrades))
	i.metrics.RecordRowsDropped(string(models.KindPrice), dropped)
	i.metrics.RecordDatasetSize(string(models.KindPrice), len(ds.Prices))
	i.metrics.RecordDatasetSize(string(models.KindMarketTrade), len(ds.MarketTrades))
	i.metrics.RecordDatasetSize(string(models.KindOwnTrade), len(ds.OwnTrades))
	i.metrics.RecordIngestDuration(time.Since(start).Seconds())

	i.logger.Info("dataset replaced",
		logger.Int("sources", len(sources)),
		logger.Int("prices", len(ds.Prices)),
		logger.Int("market_trades", len(ds.MarketTrades)),
		logger.Int("own_trades", len(ds.OwnTrades)),
		logger.Int("dropped", dropped),
		logger.Duration("took", time.Since(start)),
	)

	return &models.IngestResult{
		Sources:         ds.Sources,
		PriceRows:       len(ds.Prices),
		MarketTradeRows: len(ds.MarketTrades),
		OwnTradeRows:    len(ds.OwnTrades),
		DroppedRows:     dropped,
		Options: models.SelectorOptions{
			Products: ds.Products,
			Days:     ds.Days,
		},
	}, nil
}

func buildPrice(row tabular.Row) models.PriceRecord {
	rec := models.PriceRecord{
		Product:   drepo.Key(row["product"]),
		Day:       drepo.Key(row["day"]),
		Timestamp: optNum(row["timestamp"]),
		MidPrice:  optNum(row["mid_price"]),
	}
	for lvl := 1; lvl <= models.BookDepth; lvl++ {
		rec.BidPrice[lvl-1] = optNum(row[models.LevelField("bid_price", lvl)])
		rec.BidVolume[lvl-1] = optNum(row[models.LevelField("bid_volume", lvl)])
		rec.AskPrice[lvl-1] = optNum(row[models.LevelField("ask_price", lvl)])
		rec.AskVolume[lvl-1] = optNum(row[models.LevelField("ask_volume", lvl)])
	}
	return rec
}

func buildTrade(row tabular.Row) models.TradeRecord {
	return models.TradeRecord{
		Product:   drepo.Key(row["product"]),
		Day:       drepo.Key(row["day"]),
		Timestamp: optNum(row["timestamp"]),
		Price:     optNum(row["price"]),
		Quantity:  optNum(row["quantity"]),
	}
}

// optNum is the total coercion into an optional Float: absent and
// unparseable cells both come out invalid.
func optNum(v interface{}) models.Float {
	if f, ok := drepo.Num(v); ok {
		return models.FloatFrom(f)
	}
	return models.Float{}
}

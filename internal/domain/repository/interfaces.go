package repository

import (
	"context"
	"time"
)

// Metrics records ingestion and query instrumentation.
type Metrics interface {
	RecordRowsIngested(kind string, n int)
	RecordRowsDropped(kind string, n int)
	RecordIngestError(reason string)
	RecordIngestDuration(seconds float64)
	RecordDatasetSize(kind string, n int)
	RecordQueryLatency(op string, seconds float64)
}

// Notifier pushes dataset and selection events to connected chart UIs.
type Notifier interface {
	Broadcast(event string, payload interface{})
}

// ViewCache caches computed views keyed by selection. Implemented by
// pkg/cache backends.
type ViewCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

package models

// Requests and responses for the chart HTTP endpoints. Defined in domain for
// consistency and reuse.

// QueryRequest selects a filtered view. Nil fields fall back to the stored
// selection; fraction values outside [0,1] are clamped, never rejected.
type QueryRequest struct {
	Product  *string  `query:"product" json:"product"`
	Day      *string  `query:"day" json:"day"`
	Fraction *float64 `query:"fraction" json:"fraction"`
}

// SelectionRequest replaces individual selection fields. Nil fields keep
// their current value.
type SelectionRequest struct {
	Product  *string  `json:"product"`
	Day      *string  `json:"day"`
	Fraction *float64 `json:"fraction"`
}

// SeriesRequest names one numeric projection of a filtered collection.
type SeriesRequest struct {
	Collection string   `query:"collection" json:"collection" default:"prices" validate:"oneof=prices market_trades own_trades"`
	Field      string   `query:"field" json:"field" validate:"required"`
	Product    *string  `query:"product" json:"product"`
	Day        *string  `query:"day" json:"day"`
	Fraction   *float64 `query:"fraction" json:"fraction"`
}

// IngestResult reports one accepted ingestion batch.
type IngestResult struct {
	Sources         []string        `json:"sources"`
	PriceRows       int             `json:"price_rows"`
	MarketTradeRows int             `json:"market_trade_rows"`
	OwnTradeRows    int             `json:"own_trade_rows"`
	DroppedRows     int             `json:"dropped_rows"`
	Options         SelectorOptions `json:"options"`
}

// Health reports liveness plus the shape of the currently loaded dataset.
type Health struct {
	Status       string `json:"status"`
	PriceRows    int    `json:"price_rows"`
	MarketTrades int    `json:"market_trades"`
	OwnTrades    int    `json:"own_trades"`
	LoadedAt     string `json:"loaded_at,omitempty"`
}

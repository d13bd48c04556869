package models

import "time"

// Dataset is the unified in-memory result of one ingestion batch. It is
// immutable once published; a later batch replaces the whole value.
type Dataset struct {
	Prices       []PriceRecord `json:"prices"`
	MarketTrades []TradeRecord `json:"market_trades"`
	OwnTrades    []TradeRecord `json:"own_trades"`

	// Selector indexes, computed once per ingestion from Prices only.
	Products []string `json:"products"`
	Days     []string `json:"days"`

	LoadedAt time.Time `json:"loaded_at"`
	Sources  []string  `json:"sources"`
}

// EmptyDataset returns a dataset with no rows, used as the process-start state.
func EmptyDataset() *Dataset {
	return &Dataset{LoadedAt: time.Now()}
}

// Rows returns total row count across the three collections.
func (d *Dataset) Rows() int {
	return len(d.Prices) + len(d.MarketTrades) + len(d.OwnTrades)
}

// Selection is the operator's current slicing choice. Product and Day hold
// comparable string keys; Fraction is the time fraction in [0,1].
type Selection struct {
	Product  string  `json:"product"`
	Day      string  `json:"day"`
	Fraction float64 `json:"fraction"`
}

// DefaultSelection covers the whole observed time range.
func DefaultSelection() Selection {
	return Selection{Fraction: 1.0}
}

// SelectorOptions lists the values the UI selectors may offer.
type SelectorOptions struct {
	Products []string `json:"products"`
	Days     []string `json:"days"`
}

// View is one filtered, time-sliced slice of the dataset. Each collection is
// cut at its own fraction of its own maximum timestamp.
type View struct {
	Selection    Selection     `json:"selection"`
	Prices       []PriceRecord `json:"prices"`
	MarketTrades []TradeRecord `json:"market_trades"`
	OwnTrades    []TradeRecord `json:"own_trades"`
}

// Series is a per-field numeric projection of a row sequence, positionally
// aligned with its timestamps. Absent entries stay in place as nulls.
type Series struct {
	Field      string  `json:"field"`
	Timestamps []Float `json:"timestamps"`
	Values     []Float `json:"values"`
}

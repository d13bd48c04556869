package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which dataset collection a classified source feeds.
type Kind string

const (
	KindPrice       Kind = "price"
	KindMarketTrade Kind = "market_trade"
	KindOwnTrade    Kind = "own_trade"
)

// BookDepth is the number of order-book levels retained per side.
const BookDepth = 5

// Float is an optional numeric field value. Absent or unparseable source
// cells yield an invalid Float; the two cases are not distinguished.
type Float struct {
	Value float64
	Valid bool
}

// FloatFrom wraps a concrete value.
func FloatFrom(v float64) Float {
	return Float{Value: v, Valid: true}
}

// Or returns the value, or def when absent.
func (f Float) Or(def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.Value
}

// MarshalJSON emits null for absent values so chart series keep their
// positional alignment on the wire.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Float) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FloatFrom(v)
	return nil
}

// PriceRecord is one quote row. Product and Day are stored in comparable
// string form; order-book levels index 0..BookDepth-1 for levels 1..BookDepth.
type PriceRecord struct {
	Product   string           `json:"product"`
	Day       string           `json:"day"`
	Timestamp Float            `json:"timestamp"`
	MidPrice  Float            `json:"mid_price"`
	BidPrice  [BookDepth]Float `json:"bid_price"`
	BidVolume [BookDepth]Float `json:"bid_volume"`
	AskPrice  [BookDepth]Float `json:"ask_price"`
	AskVolume [BookDepth]Float `json:"ask_volume"`
}

// TradeRecord is one market or own trade row. Both share the shape; the
// owning collection carries the distinction.
type TradeRecord struct {
	Product   string `json:"product"`
	Day       string `json:"day"`
	Timestamp Float  `json:"timestamp"`
	Price     Float  `json:"price"`
	Quantity  Float  `json:"quantity"`
}

// FieldRecord is a row exposing named numeric fields for series extraction.
type FieldRecord interface {
	Field(name string) (Float, bool)
	Ts() Float
}

// Field returns the numeric field with the given name. Book fields use the
// form bid_price_N / ask_price_N / bid_volume_N / ask_volume_N for any level
// N >= 1; levels beyond the stored depth report as absent, not unknown.
func (r PriceRecord) Field(name string) (Float, bool) {
	switch name {
	case "timestamp":
		return r.Timestamp, true
	case "mid_price":
		return r.MidPrice, true
	}
	base, level, ok := SplitLevelField(name)
	if !ok {
		return Float{}, false
	}
	var side *[BookDepth]Float
	switch base {
	case "bid_price":
		side = &r.BidPrice
	case "bid_volume":
		side = &r.BidVolume
	case "ask_price":
		side = &r.AskPrice
	case "ask_volume":
		side = &r.AskVolume
	default:
		return Float{}, false
	}
	if level > BookDepth {
		return Float{}, true
	}
	return side[level-1], true
}

// Ts returns the row timestamp.
func (r PriceRecord) Ts() Float { return r.Timestamp }

// Field returns the numeric field with the given name.
func (r TradeRecord) Field(name string) (Float, bool) {
	switch name {
	case "timestamp":
		return r.Timestamp, true
	case "price":
		return r.Price, true
	case "quantity":
		return r.Quantity, true
	}
	return Float{}, false
}

// Ts returns the row timestamp.
func (r TradeRecord) Ts() Float { return r.Timestamp }

// SplitLevelField splits a per-level field name such as "bid_price_3" into
// its base name and 1-based level.
func SplitLevelField(name string) (base string, level int, ok bool) {
	i := strings.LastIndexByte(name, '_')
	if i <= 0 || i == len(name)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return name[:i], n, true
}

// LevelField builds a per-level field name, e.g. LevelField("bid_price", 2).
func LevelField(base string, level int) string {
	return fmt.Sprintf("%s_%d", base, level)
}

package usecase

import (
	"strings"

	"MarketLens/internal/domain/models"
)

// Classify assigns a record kind from the source identifier alone. The
// decision table is closed and ordered: "own"+"trade" beats "trade" beats
// everything else. Matching is a case-insensitive substring check; row
// content is never inspected.
func Classify(source string) models.Kind {
	s := strings.ToLower(source)
	switch {
	case strings.Contains(s, "own") && strings.Contains(s, "trade"):
		return models.KindOwnTrade
	case strings.Contains(s, "trade"):
		return models.KindMarketTrade
	default:
		return models.KindPrice
	}
}

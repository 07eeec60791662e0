package reporting

import (
	"strconv"

	"github.com/shopspring/decimal"

	"bet-ledger/internal/domain"
)

// money formats v with two decimals.
func money(v float64) string {
	if !domain.IsFinite(v) {
		return nonFinite(v)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// pct formats a percentage with up to two decimals.
func pct(v float64) string {
	if !domain.IsFinite(v) {
		return nonFinite(v)
	}
	return decimal.NewFromFloat(v).Round(2).String()
}

// decimal cannot represent NaN or infinities.
func nonFinite(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Package render formats scan results for people: a console table and the rows served to the web UI.
package render

import (
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

const (
	priceDecimals   = 6
	percentDecimals = 2
	profitDecimals  = 2
)

// Row display-ready opportunity.
type Row struct {
	Symbol          string `json:"symbol"`
	PriceA          string `json:"price_a"`
	PriceB          string `json:"price_b"`
	Difference      string `json:"difference"`
	Percentage      string `json:"percentage"`
	EstimatedProfit string `json:"estimated_profit"`
	// Positive true when the percentage difference is above zero.
	Positive bool `json:"positive"`
	// Negative true when the percentage difference is below zero.
	Negative bool `json:"negative"`
}

// FormatPrice formats a price with 6 decimals.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(priceDecimals)
}

// FormatPercent formats a percentage with 2 decimals and a trailing sign.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(percentDecimals) + "%"
}

// FormatProfit formats a profit with 2 decimals.
func FormatProfit(d decimal.Decimal) string {
	return d.StringFixed(profitDecimals)
}

// NewRow converts an opportunity into its display form.
func NewRow(o domain.ArbitrageOpportunity) Row {
	return Row{
		Symbol:          o.Symbol,
		PriceA:          FormatPrice(o.PriceA),
		PriceB:          FormatPrice(o.PriceB),
		Difference:      FormatPrice(o.PriceDifference),
		Percentage:      FormatPercent(o.PercentageDifference),
		EstimatedProfit: FormatProfit(o.EstimatedProfit),
		Positive:        o.PercentageDifference.IsPositive(),
		Negative:        o.PercentageDifference.IsNegative(),
	}
}

// Rows converts every opportunity of a result. Failures have no rows.
func Rows(result domain.ScanResult) []Row {
	rows := make([]Row, 0, len(result.Opportunities))
	for _, o := range result.Opportunities {
		rows = append(rows, NewRow(o))
	}

	return rows
}

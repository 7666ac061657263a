package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArbitrageOpportunity fee-adjusted comparison of two venues' quotes for the same symbol.
// EstimatedProfit may be negative.
type ArbitrageOpportunity struct {
	Symbol               string          `json:"symbol"`
	PriceA               decimal.Decimal `json:"price_a"`
	PriceB               decimal.Decimal `json:"price_b"`
	PriceDifference      decimal.Decimal `json:"price_difference"`
	PercentageDifference decimal.Decimal `json:"percentage_difference"`
	GrossProfit          decimal.Decimal `json:"gross_profit"`
	Fees                 decimal.Decimal `json:"fees"`
	EstimatedProfit      decimal.Decimal `json:"estimated_profit"`
	TradeAmount          decimal.Decimal `json:"trade_amount"`
	Timestamp            time.Time       `json:"ts"`
}

// Profitable reports whether the opportunity earns after fees.
func (o ArbitrageOpportunity) Profitable() bool {
	return o.EstimatedProfit.IsPositive()
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketPrice one venue's current price for one symbol.
// Created by a quote source and never modified afterwards.
type MarketPrice struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"ts"`
}

// NewMarketPrice creates a new MarketPrice.
func NewMarketPrice(symbol string, price decimal.Decimal, ts time.Time) MarketPrice {
	return MarketPrice{Symbol: symbol, Price: price, Timestamp: ts}
}

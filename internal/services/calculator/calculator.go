// Package calculator turns two venue quotes into a fee-adjusted arbitrage opportunity.
package calculator

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// DefaultTradeAmount trade size in quote currency used when none is configured.
var DefaultTradeAmount = decimal.NewFromInt(1000)

var hundred = decimal.NewFromInt(100)

type feeModel interface {
	TotalFees(priceA, priceB, tradeAmount decimal.Decimal) decimal.Decimal
}

// Calculator evaluates quote pairs. It is safe for concurrent use.
type Calculator struct {
	fees feeModel
	now  func() time.Time
}

// Option configures the Calculator.
type Option func(*Calculator)

// WithClock overrides the clock used to stamp opportunities.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// NewCalculator creates a calculator backed by the given fee model.
func NewCalculator(fees feeModel, opts ...Option) *Calculator {
	c := &Calculator{fees: fees, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Evaluate compares quoteB against the reference quoteA.
// Every differential is returned, including ones with negative EstimatedProfit;
// quoteA.Symbol is written into the result without checking quoteB.Symbol.
func (c *Calculator) Evaluate(quoteA, quoteB domain.MarketPrice, tradeAmount decimal.Decimal) (domain.ArbitrageOpportunity, error) {
	priceA, priceB := quoteA.Price, quoteB.Price
	if !priceA.IsPositive() {
		return domain.ArbitrageOpportunity{}, errors.Wrapf(domain.ErrInvalidInput, "%s: reference price must be positive, got %s", quoteA.Symbol, priceA.String())
	}
	if !priceB.IsPositive() {
		return domain.ArbitrageOpportunity{}, errors.Wrapf(domain.ErrInvalidInput, "%s: compared price must be positive, got %s", quoteA.Symbol, priceB.String())
	}
	if !tradeAmount.IsPositive() {
		return domain.ArbitrageOpportunity{}, errors.Wrapf(domain.ErrInvalidInput, "trade amount must be positive, got %s", tradeAmount.String())
	}

	// order matters for reproducible rounding of the division
	priceDifference := priceB.Sub(priceA)
	percentageDifference := priceDifference.Div(priceA).Mul(hundred)
	grossProfit := priceDifference.Mul(tradeAmount)
	totalFees := c.fees.TotalFees(priceA, priceB, tradeAmount)
	estimatedProfit := grossProfit.Sub(totalFees)

	return domain.ArbitrageOpportunity{
		Symbol:               quoteA.Symbol,
		PriceA:               priceA,
		PriceB:               priceB,
		PriceDifference:      priceDifference,
		PercentageDifference: percentageDifference,
		GrossProfit:          grossProfit,
		Fees:                 totalFees,
		EstimatedProfit:      estimatedProfit,
		TradeAmount:          tradeAmount,
		Timestamp:            c.now(),
	}, nil
}

// Package fees holds the static per-venue fee schedule used to price an arbitrage leg pair.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// Model computes total trading and network costs for one round trip across both venues.
type Model struct {
	schedule domain.FeeSchedule
}

// NewModel creates a fee model. A schedule with a negative fee is rejected.
func NewModel(schedule domain.FeeSchedule) (*Model, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	return &Model{schedule: schedule}, nil
}

// Schedule returns the configured fee schedule.
func (m *Model) Schedule() domain.FeeSchedule {
	return m.schedule
}

// TotalFees returns (priceA*taker + priceB*dex + network) * tradeAmount.
func (m *Model) TotalFees(priceA, priceB, tradeAmount decimal.Decimal) decimal.Decimal {
	cexFee := priceA.Mul(m.schedule.TakerFee)
	dexFee := priceB.Mul(m.schedule.DexFee)

	return cexFee.Add(dexFee).Add(m.schedule.NetworkFee).Mul(tradeAmount)
}

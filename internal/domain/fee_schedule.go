package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// FeeSchedule per-venue trading and network costs. Loaded once at startup.
type FeeSchedule struct {
	// MakerFee centralized exchange maker rate.
	MakerFee decimal.Decimal `json:"maker_fee"`
	// TakerFee centralized exchange taker rate.
	TakerFee decimal.Decimal `json:"taker_fee"`
	// DexFee decentralized venue swap rate.
	DexFee decimal.Decimal `json:"dex_fee"`
	// NetworkFee flat per-unit network cost in quote currency.
	NetworkFee decimal.Decimal `json:"network_fee"`
}

// DefaultFeeSchedule returns the Binance/Solana DEX schedule the scanner ships with.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		MakerFee:   decimal.RequireFromString("0.001"),
		TakerFee:   decimal.RequireFromString("0.001"),
		DexFee:     decimal.RequireFromString("0.003"),
		NetworkFee: decimal.RequireFromString("0.000005"),
	}
}

// Validate checks that no fee is negative.
func (f FeeSchedule) Validate() error {
	fees := []struct {
		name  string
		value decimal.Decimal
	}{
		{"maker_fee", f.MakerFee},
		{"taker_fee", f.TakerFee},
		{"dex_fee", f.DexFee},
		{"network_fee", f.NetworkFee},
	}
	for _, fee := range fees {
		if fee.value.IsNegative() {
			return errors.Wrapf(ErrConfiguration, "%s must not be negative, got %s", fee.name, fee.value.String())
		}
	}

	return nil
}

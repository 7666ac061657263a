package fees

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

func TestNewModel(t *testing.T) {
	t.Run("valid schedule", func(t *testing.T) {
		m, err := NewModel(domain.DefaultFeeSchedule())
		require.NoError(t, err)
		assert.True(t, m.Schedule().TakerFee.Equal(decimal.RequireFromString("0.001")))
	})

	t.Run("negative network fee rejected", func(t *testing.T) {
		schedule := domain.DefaultFeeSchedule()
		schedule.NetworkFee = decimal.NewFromInt(-1)

		m, err := NewModel(schedule)
		require.Error(t, err)
		assert.Nil(t, m)
		assert.True(t, errors.Is(err, domain.ErrConfiguration))
	})
}

func TestModel_TotalFees(t *testing.T) {
	m, err := NewModel(domain.DefaultFeeSchedule())
	require.NoError(t, err)

	tests := []struct {
		name     string
		priceA   string
		priceB   string
		amount   string
		expected string
	}{
		{
			name:   "reference example",
			priceA: "100", priceB: "100.5", amount: "1000",
			// (100*0.001 + 100.5*0.003 + 0.000005) * 1000
			expected: "401.505",
		},
		{
			name:   "equal prices",
			priceA: "100", priceB: "100", amount: "1",
			expected: "0.400005",
		},
		{
			name:   "zero trade amount",
			priceA: "100", priceB: "100", amount: "0",
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.TotalFees(
				decimal.RequireFromString(tt.priceA),
				decimal.RequireFromString(tt.priceB),
				decimal.RequireFromString(tt.amount),
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "expected %s, got %s", tt.expected, got.String())
		})
	}
}

func TestModel_TotalFeesZeroSchedule(t *testing.T) {
	m, err := NewModel(domain.FeeSchedule{})
	require.NoError(t, err)

	got := m.TotalFees(decimal.NewFromInt(100), decimal.NewFromInt(200), decimal.NewFromInt(1000))
	assert.True(t, got.IsZero())
}

package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeSchedule_Validate(t *testing.T) {
	t.Run("default schedule is valid", func(t *testing.T) {
		require.NoError(t, DefaultFeeSchedule().Validate())
	})

	t.Run("zero fees are valid", func(t *testing.T) {
		require.NoError(t, FeeSchedule{}.Validate())
	})

	t.Run("negative fee is a configuration error", func(t *testing.T) {
		schedule := DefaultFeeSchedule()
		schedule.DexFee = decimal.RequireFromString("-0.003")

		err := schedule.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.Contains(t, err.Error(), "dex_fee")
	})
}

package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumTransactions(t *testing.T) {
	points, co2 := SumTransactions(nil)
	require.Equal(t, 0, points)
	require.Equal(t, 0.0, co2)

	txs := []*PointTransaction{
		{Points: 50, CO2: 2.5, TransactionType: TRANSACTION_EARNED},
		{Points: 30, CO2: 1.8, TransactionType: TRANSACTION_EARNED},
		{Points: -20, CO2: 0, TransactionType: TRANSACTION_ADJUSTED},
	}

	points, co2 = SumTransactions(txs)
	require.Equal(t, 60, points)
	require.InDelta(t, 4.3, co2, 1e-9)
}

func TestValidAdjustment(t *testing.T) {
	require.True(t, ValidAdjustment(100, -100, 5.0, -5.0))
	require.True(t, ValidAdjustment(100, 50, 5.0, 1.0))
	require.True(t, ValidAdjustment(0, 0, 0, 0))

	require.False(t, ValidAdjustment(100, -101, 5.0, 0))
	require.False(t, ValidAdjustment(100, -10000, 5.0, 0))
	require.False(t, ValidAdjustment(100, 0, 5.0, -5.5))
}

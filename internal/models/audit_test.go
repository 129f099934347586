package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConsistencyReport(t *testing.T) {
	now := time.Now()

	report := NewConsistencyReport(7, 150, 150, 6.5, 6.5, now)
	require.True(t, report.Consistent)
	require.Equal(t, int64(7), report.UserID)
	require.Equal(t, now, report.CheckedAt)

	report = NewConsistencyReport(7, 150, 130, 6.5, 5.0, now)
	require.False(t, report.Consistent)
	require.Equal(t, 150, report.CachedPoints)
	require.Equal(t, 130, report.LedgerPoints)

	// CO2 alone never decides consistency; points are the projection key
	report = NewConsistencyReport(7, 150, 150, 6.5, 9.9, now)
	require.True(t, report.Consistent)
}

package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidPointsValue(t *testing.T) {
	require.False(t, ValidPointsValue(0))
	require.False(t, ValidPointsValue(-10))
	require.True(t, ValidPointsValue(1))
	require.True(t, ValidPointsValue(500))
	require.True(t, ValidPointsValue(1000))
	require.False(t, ValidPointsValue(1001))
}

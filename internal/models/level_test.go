package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int
		level  int
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{249, 1},
		{250, 2},
		{499, 2},
		{500, 3},
		{999, 3},
		{1000, 4},
		{2000, 5},
		{5000, 6},
		{10000, 7},
		{20000, 8},
		{50000, 9},
		{99999, 9},
		{100000, 10},
		{1000000, 10},
	}

	for _, c := range cases {
		require.Equal(t, c.level, LevelForPoints(c.points), "points=%d", c.points)
	}
}

func TestLevelForPointsNegative(t *testing.T) {
	require.Equal(t, 0, LevelForPoints(-50))
}

func TestLevelForPointsMonotonic(t *testing.T) {
	prev := 0
	for points := 0; points <= 120000; points += 37 {
		level := LevelForPoints(points)
		require.GreaterOrEqual(t, level, prev, "points=%d", points)
		prev = level
	}
}

func TestPointsForLevel(t *testing.T) {
	require.Equal(t, 100, PointsForLevel(1))
	require.Equal(t, 5000, PointsForLevel(6))
	require.Equal(t, 100000, PointsForLevel(10))
	require.Equal(t, 0, PointsForLevel(11))

	for level := 1; level <= 10; level++ {
		require.Equal(t, level, LevelForPoints(PointsForLevel(level)))
		require.Equal(t, level-1, LevelForPoints(PointsForLevel(level)-1))
	}
}

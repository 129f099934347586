package models

// levelThresholds maps the minimum point total to each level tier,
// highest first so LevelForPoints can return on first match.
var levelThresholds = []struct {
	Points int
	Level  int
}{
	{100000, 10},
	{50000, 9},
	{20000, 8},
	{10000, 7},
	{5000, 6},
	{2000, 5},
	{1000, 4},
	{500, 3},
	{250, 2},
	{100, 1},
}

// LevelForPoints derives the level tier from a cumulative point total.
// The level is never persisted; callers gating level-dependent decisions
// must call this against a fresh point read.
func LevelForPoints(points int) int {
	for _, t := range levelThresholds {
		if points >= t.Points {
			return t.Level
		}
	}
	return 0
}

// PointsForLevel returns the minimum point total required for a level.
func PointsForLevel(level int) int {
	for _, t := range levelThresholds {
		if t.Level == level {
			return t.Points
		}
	}
	return 0
}

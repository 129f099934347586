package models

type LeaderboardItem struct {
	Name   string  `json:"name"`
	UserId int64   `json:"user_id"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank,omitempty"`
}

type LeaderboardResponse struct {
	Leaderboard []*LeaderboardItem `json:"leaderboard"`
	Me          *LeaderboardItem   `json:"me"`
	Total       int64              `json:"total"`
}

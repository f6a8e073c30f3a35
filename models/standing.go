package models

// Standing is one leaderboard row. Rows are derived on demand from an
// event's completed matches and are never persisted.
type Standing struct {
	Rank        int    `json:"rank"`
	UserID      int    `json:"user_id"`
	Name        string `json:"name"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Ties        int    `json:"ties"`
	Points      int    `json:"points"`
}

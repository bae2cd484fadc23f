package models

type RankingEntry struct {
	Rank        int     `json:"rank"`
	Name        string  `json:"name"`
	Rating      *int    `json:"rating,omitempty"`
	GamesPlayed int     `json:"games_played"`
	GamesWon    int     `json:"games_won"`
	WinRate     float64 `json:"win_rate"`
}

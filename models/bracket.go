package models

// KnockoutMatch is a slot pair in the knockout tree. A nil team id is either a
// bye (round 0) or a slot still waiting for a winner from the previous round.
type KnockoutMatch struct {
	ID       int        `json:"match_id"`
	Round    int        `json:"round"`
	Team1ID  *int       `json:"team1_id"`
	Team2ID  *int       `json:"team2_id"`
	WinnerID *int       `json:"winner_id"`
	IsBye    bool       `json:"is_bye"`
	Sets     []SetScore `json:"sets,omitempty"`
}

// Bracket holds the knockout rounds, round 0 first.
type Bracket struct {
	Rounds [][]*KnockoutMatch `json:"rounds"`
}

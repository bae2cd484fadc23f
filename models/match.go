package models

import "time"

const DefaultCourtLabel = "Manual Entry"

// Game is a recorded doubles match. Only the scores (and the derived winner)
// may change after creation; CreatedAt and ID define the replay order.
type Game struct {
	ID         int       `json:"id" db:"id"`
	ClubID     int       `json:"club_id" db:"club_id"`
	Court      string    `json:"court" db:"court"`
	Team1      [2]string `json:"team1" db:"-"`
	Team2      [2]string `json:"team2" db:"-"`
	Team1Score int       `json:"team1_score" db:"team1_score"`
	Team2Score int       `json:"team2_score" db:"team2_score"`
	Winner     int       `json:"winner" db:"winner"`
	PlayedAt   time.Time `json:"played_at" db:"played_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// WinnerFromScores returns 1 when team 1 scored more, 2 otherwise.
func WinnerFromScores(team1Score, team2Score int) int {
	if team1Score > team2Score {
		return 1
	}
	return 2
}

// SetScores updates both scores and the derived winner.
func (g *Game) SetScores(team1Score, team2Score int) {
	g.Team1Score = team1Score
	g.Team2Score = team2Score
	g.Winner = WinnerFromScores(team1Score, team2Score)
}

// WinningTeam returns the roster of the winning side.
func (g *Game) WinningTeam() [2]string {
	if g.Winner == 1 {
		return g.Team1
	}
	return g.Team2
}

// Players returns all four names, team 1 first.
func (g *Game) Players() [4]string {
	return [4]string{g.Team1[0], g.Team1[1], g.Team2[0], g.Team2[1]}
}

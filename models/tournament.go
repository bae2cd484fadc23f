package models

import "time"

// TournamentStatus представляет стадии турнира.
type TournamentStatus string

const (
	StatusSetup      TournamentStatus = "setup"
	StatusGroupStage TournamentStatus = "group_stage"
	StatusKnockout   TournamentStatus = "knockout"
	StatusCompleted  TournamentStatus = "completed"
)

// MatchStage tells which part of a tournament a recorded encounter belongs to.
type MatchStage string

const (
	StageGroup    MatchStage = "group"
	StageKnockout MatchStage = "knockout"
)

// TournamentTeam is a pair snapshotted from the club roster at creation time.
type TournamentTeam struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Players [2]string `json:"players"`
}

type SetScore struct {
	Team1Score int `json:"team1_score"`
	Team2Score int `json:"team2_score"`
}

// Fixture is a scheduled group stage encounter.
type Fixture struct {
	Group   int `json:"group"`
	Order   int `json:"order"`
	Team1ID int `json:"team1_id"`
	Team2ID int `json:"team2_id"`
}

type Tournament struct {
	ID             int                    `json:"id" db:"id"`
	ClubID         int                    `json:"club_id" db:"club_id"`
	Name           string                 `json:"name" db:"name"`
	Status         TournamentStatus       `json:"status" db:"status"`
	NumGroups      int                    `json:"num_groups" db:"num_groups"`
	KnockoutRounds int                    `json:"knockout_rounds" db:"knockout_rounds"`
	Teams          []TournamentTeam       `json:"teams" db:"teams"`
	Groups         map[int]int            `json:"groups" db:"groups"`
	Standings      map[int]*GroupStanding `json:"standings" db:"standings"`
	Bracket        *Bracket               `json:"bracket,omitempty" db:"bracket"`
	ChampionID     *int                   `json:"champion_id,omitempty" db:"champion_id"`
	CreatedAt      time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at" db:"updated_at"`
}

// Team returns the team with the given id.
func (t *Tournament) Team(id int) (TournamentTeam, bool) {
	for _, team := range t.Teams {
		if team.ID == id {
			return team, true
		}
	}
	return TournamentTeam{}, false
}

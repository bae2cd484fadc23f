package models

import "time"

type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

const DefaultRating = 1200

// PartnerRecord хранит статистику игр с конкретным партнером.
type PartnerRecord struct {
	Games int `json:"games"`
	Wins  int `json:"wins"`
}

// Member is a player on a club roster. Rating, games and partner stats are
// derived state owned by the stats ledger.
type Member struct {
	ID           int                      `json:"id" db:"id"`
	ClubID       int                      `json:"club_id" db:"club_id"`
	Name         string                   `json:"name" db:"name"`
	Role         MemberRole               `json:"role" db:"role"`
	Rating       int                      `json:"rating" db:"elo"`
	GamesPlayed  int                      `json:"games_played" db:"games_played"`
	GamesWon     int                      `json:"games_won" db:"games_won"`
	PartnerStats map[string]PartnerRecord `json:"partner_stats" db:"partner_stats"`
	CreatedAt    time.Time                `json:"created_at" db:"created_at"`
}

// WinRate returns the share of won games in percent.
func (m *Member) WinRate() float64 {
	if m.GamesPlayed == 0 {
		return 0
	}
	return float64(m.GamesWon) / float64(m.GamesPlayed) * 100
}

// ResetStats returns the member to the state it had right after joining the club.
func (m *Member) ResetStats() {
	m.Rating = DefaultRating
	m.GamesPlayed = 0
	m.GamesWon = 0
	m.PartnerStats = make(map[string]PartnerRecord)
}

// Clone returns a deep copy, partner stats included.
func (m *Member) Clone() *Member {
	c := *m
	c.PartnerStats = make(map[string]PartnerRecord, len(m.PartnerStats))
	for name, rec := range m.PartnerStats {
		c.PartnerStats[name] = rec
	}
	return &c
}

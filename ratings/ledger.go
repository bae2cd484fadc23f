package ratings

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Dosada05/club-ladder/models"
)

// Roster indexes the members a ledger may update by name.
type Roster map[string]*models.Member

func NewRoster(members []*models.Member) Roster {
	roster := make(Roster, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		if m.PartnerStats == nil {
			m.PartnerStats = make(map[string]models.PartnerRecord)
		}
		roster[m.Name] = m
	}
	return roster
}

// Ledger applies games to member statistics. Ratings move only when the
// club capabilities enable them.
type Ledger struct {
	caps   models.Capabilities
	logger *slog.Logger
}

func NewLedger(caps models.Capabilities, logger *slog.Logger) *Ledger {
	return &Ledger{caps: caps, logger: logger}
}

// ApplyMatch updates games, wins, partner history and rating of the members
// named in g. Names that are not on the roster are skipped; the rest of the
// game is still applied.
func (l *Ledger) ApplyMatch(roster Roster, g *models.Game) {
	team1 := l.resolve(roster, g, g.Team1)
	team2 := l.resolve(roster, g, g.Team2)

	// Team averages must be taken before any rating changes.
	rating1 := teamAverage(team1)
	rating2 := teamAverage(team2)

	for idx, team := range [2][2]*models.Member{team1, team2} {
		won := g.Winner == idx+1
		for _, p := range team {
			if p == nil {
				continue
			}
			p.GamesPlayed++
			if won {
				p.GamesWon++
			}
		}
		if team[0] != nil && team[1] != nil {
			recordPartner(team[0], team[1].Name, won)
			recordPartner(team[1], team[0].Name, won)
		}
	}

	if !l.caps.RatingEnabled {
		return
	}
	delta := Delta(rating1, rating2, g.Winner == 1)
	for _, p := range team1 {
		if p != nil {
			p.Rating = Apply(p.Rating, delta)
		}
	}
	for _, p := range team2 {
		if p != nil {
			p.Rating = Apply(p.Rating, -delta)
		}
	}
}

// RecomputeAll rebuilds member statistics from scratch. The input members are
// not modified: the result is a fresh copy of every member, reset to default
// stats, with history replayed in creation order.
func (l *Ledger) RecomputeAll(members []*models.Member, history []*models.Game) []*models.Member {
	fresh := make([]*models.Member, 0, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		c := m.Clone()
		c.ResetStats()
		fresh = append(fresh, c)
	}
	roster := NewRoster(fresh)
	for _, g := range SortForReplay(history) {
		l.ApplyMatch(roster, g)
	}
	return fresh
}

// SortForReplay orders games by creation time, then id. Played-at dates are
// user editable and never take part in the ordering.
func SortForReplay(history []*models.Game) []*models.Game {
	ordered := make([]*models.Game, 0, len(history))
	for _, g := range history {
		if g != nil {
			ordered = append(ordered, g)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

func (l *Ledger) resolve(roster Roster, g *models.Game, names [2]string) [2]*models.Member {
	var team [2]*models.Member
	for i, name := range names {
		p, ok := roster[name]
		if !ok {
			if l.logger != nil {
				l.logger.DebugContext(context.Background(), "skipping player missing from roster",
					slog.Int("game_id", g.ID), slog.String("player", name))
			}
			continue
		}
		team[i] = p
	}
	return team
}

func teamAverage(team [2]*models.Member) float64 {
	switch {
	case team[0] != nil && team[1] != nil:
		return TeamRating(team[0].Rating, team[1].Rating)
	case team[0] != nil:
		return float64(team[0].Rating)
	case team[1] != nil:
		return float64(team[1].Rating)
	default:
		return models.DefaultRating
	}
}

func recordPartner(p *models.Member, partner string, won bool) {
	rec := p.PartnerStats[partner]
	rec.Games++
	if won {
		rec.Wins++
	}
	p.PartnerStats[partner] = rec
}

// Package pairings searches a player pool for the most even doubles matches.
//
// The search is exhaustive and O(n^4) in the pool size. Pools are club
// rosters, so n stays in the tens.
package pairings

import (
	"math"
	"sort"

	"github.com/Dosada05/club-ladder/models"
)

// MinPlayers is the smallest pool a doubles match can be drawn from.
const MinPlayers = 4

const NotEnoughPlayersMessage = "Need at least 4 members to generate match suggestions"

// Metric selects the team strength used to measure balance.
type Metric int

const (
	// RatingBased compares the average rating of the two teams.
	RatingBased Metric = iota
	// WinCountBased compares the summed win counts, for clubs without ratings.
	WinCountBased
)

func (m Metric) String() string {
	switch m {
	case RatingBased:
		return "rating"
	case WinCountBased:
		return "wins"
	default:
		return "unknown"
	}
}

// MetricFor picks the metric a club with the given capabilities uses.
func MetricFor(caps models.Capabilities) Metric {
	if caps.RatingEnabled {
		return RatingBased
	}
	return WinCountBased
}

type Candidate struct {
	Name     string
	Rating   int
	GamesWon int
}

// CandidatesFromMembers keeps roster order, which fixes the enumeration order.
func CandidatesFromMembers(members []*models.Member) []Candidate {
	pool := make([]Candidate, 0, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		pool = append(pool, Candidate{Name: m.Name, Rating: m.Rating, GamesWon: m.GamesWon})
	}
	return pool
}

type Pairing struct {
	TeamA   [2]string `json:"team1"`
	TeamB   [2]string `json:"team2"`
	Balance float64   `json:"balance"`
}

type Result struct {
	Metric   string    `json:"metric"`
	Pairings []Pairing `json:"suggestions"`
	Message  string    `json:"message,omitempty"`
}

// Suggest returns the limit most balanced pairings, lowest balance first.
// Equal balances keep enumeration order. Both orientations of a split are
// enumerated, as team order matters to whoever records the result.
func Suggest(pool []Candidate, metric Metric, limit int) Result {
	res := Result{Metric: metric.String(), Pairings: []Pairing{}}
	if len(pool) < MinPlayers {
		res.Message = NotEnoughPlayersMessage
		return res
	}

	all := make([]Pairing, 0)
	enumerate(pool, metric, func(p Pairing) {
		all = append(all, p)
	})
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Balance < all[j].Balance
	})

	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	res.Pairings = all
	return res
}

// Best returns the single most balanced pairing; the first one found wins
// ties. ok is false when the pool is too small.
func Best(pool []Candidate, metric Metric) (best Pairing, ok bool) {
	if len(pool) < MinPlayers {
		return Pairing{}, false
	}
	enumerate(pool, metric, func(p Pairing) {
		if !ok || p.Balance < best.Balance {
			best = p
			ok = true
		}
	})
	return best, ok
}

func enumerate(pool []Candidate, metric Metric, visit func(Pairing)) {
	n := len(pool)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := 0; k < n; k++ {
				if k == i || k == j {
					continue
				}
				for l := k + 1; l < n; l++ {
					if l == i || l == j {
						continue
					}
					visit(Pairing{
						TeamA:   [2]string{pool[i].Name, pool[j].Name},
						TeamB:   [2]string{pool[k].Name, pool[l].Name},
						Balance: balance(metric, pool[i], pool[j], pool[k], pool[l]),
					})
				}
			}
		}
	}
}

func balance(metric Metric, a1, a2, b1, b2 Candidate) float64 {
	switch metric {
	case WinCountBased:
		return math.Abs(float64((a1.GamesWon + a2.GamesWon) - (b1.GamesWon + b2.GamesWon)))
	default:
		teamA := float64(a1.Rating+a2.Rating) / 2
		teamB := float64(b1.Rating+b2.Rating) / 2
		return math.Abs(teamA - teamB)
	}
}

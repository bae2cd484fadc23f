package brackets

import (
	"fmt"

	"github.com/Dosada05/club-ladder/models"
)

// MaxRounds caps the knockout tree at 64 slots.
const MaxRounds = 6

// BuildBracket seeds the qualified teams into 2^rounds slots in the given
// order. Missing seeds become byes, surplus qualifiers are dropped. Match ids
// run from 1 to 2^rounds-1, round by round.
func BuildBracket(qualified []int, rounds int) (*models.Bracket, error) {
	if rounds < 1 || rounds > MaxRounds {
		return nil, fmt.Errorf("%w: %d (allowed 1..%d)", ErrInvalidRounds, rounds, MaxRounds)
	}

	slots := 1 << uint(rounds)
	seeds := make([]*int, slots)
	for i := 0; i < slots && i < len(qualified); i++ {
		id := qualified[i]
		seeds[i] = &id
	}

	bracket := &models.Bracket{Rounds: make([][]*models.KnockoutMatch, rounds)}
	matchID := 0
	for r := 0; r < rounds; r++ {
		count := slots >> uint(r+1)
		matches := make([]*models.KnockoutMatch, count)
		for i := range matches {
			matchID++
			m := &models.KnockoutMatch{ID: matchID, Round: r}
			if r == 0 {
				m.Team1ID = seeds[2*i]
				m.Team2ID = seeds[2*i+1]
				m.IsBye = m.Team1ID == nil || m.Team2ID == nil
			}
			matches[i] = m
		}
		bracket.Rounds[r] = matches
	}
	return bracket, nil
}

// FindMatch locates a knockout match by id.
func FindMatch(b *models.Bracket, matchID int) (round, offset int, m *models.KnockoutMatch, ok bool) {
	if b == nil {
		return 0, 0, nil, false
	}
	for r, matches := range b.Rounds {
		for i, candidate := range matches {
			if candidate.ID == matchID {
				return r, i, candidate, true
			}
		}
	}
	return 0, 0, nil, false
}

// Advance records the winner of a playable knockout match and moves it into
// the next round. It reports whether the final was just decided.
func Advance(b *models.Bracket, matchID, winnerID int, sets []models.SetScore) (bool, error) {
	round, offset, m, ok := FindMatch(b, matchID)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
	}
	if m.WinnerID != nil {
		return false, fmt.Errorf("%w: %d", ErrMatchDecided, matchID)
	}
	if m.IsBye {
		return false, fmt.Errorf("%w: %d", ErrByeMatch, matchID)
	}
	if m.Team1ID == nil || m.Team2ID == nil {
		return false, fmt.Errorf("%w: %d", ErrMatchNotReady, matchID)
	}
	if winnerID != *m.Team1ID && winnerID != *m.Team2ID {
		return false, fmt.Errorf("%w: team %d, match %d", ErrWinnerNotInMatch, winnerID, matchID)
	}

	winner := winnerID
	m.WinnerID = &winner
	m.Sets = append([]models.SetScore(nil), sets...)
	return promote(b, round, offset, winner), nil
}

// ResolveByes walks the tree and pushes every team facing an empty side
// straight through. A side is empty when it comes from a round-0 bye slot or
// from a match that can never produce a winner. It reports whether the final
// ended up decided this way.
func ResolveByes(b *models.Bracket) bool {
	if b == nil || len(b.Rounds) == 0 {
		return false
	}
	dead := make([][]bool, len(b.Rounds))
	completed := false
	for r, matches := range b.Rounds {
		dead[r] = make([]bool, len(matches))
		for i, m := range matches {
			var side1Dead, side2Dead bool
			if r == 0 {
				side1Dead, side2Dead = m.Team1ID == nil, m.Team2ID == nil
			} else {
				side1Dead, side2Dead = dead[r-1][2*i], dead[r-1][2*i+1]
			}

			if side1Dead && side2Dead {
				dead[r][i] = true
				m.IsBye = true
				continue
			}
			if m.WinnerID != nil {
				continue
			}

			var through *int
			switch {
			case side1Dead && m.Team2ID != nil:
				through = m.Team2ID
			case side2Dead && m.Team1ID != nil:
				through = m.Team1ID
			}
			if through == nil {
				continue
			}
			winner := *through
			m.IsBye = true
			m.WinnerID = &winner
			if promote(b, r, i, winner) {
				completed = true
			}
		}
	}
	return completed
}

// Champion returns the winner of the final, if decided.
func Champion(b *models.Bracket) *int {
	if b == nil || len(b.Rounds) == 0 {
		return nil
	}
	final := b.Rounds[len(b.Rounds)-1]
	if len(final) == 0 || final[0].WinnerID == nil {
		return nil
	}
	id := *final[0].WinnerID
	return &id
}

// PlayableMatches lists matches with both teams known and no winner yet.
func PlayableMatches(b *models.Bracket) []*models.KnockoutMatch {
	playable := make([]*models.KnockoutMatch, 0)
	if b == nil {
		return playable
	}
	for _, matches := range b.Rounds {
		for _, m := range matches {
			if m.WinnerID == nil && !m.IsBye && m.Team1ID != nil && m.Team2ID != nil {
				playable = append(playable, m)
			}
		}
	}
	return playable
}

func promote(b *models.Bracket, round, offset, teamID int) bool {
	if round == len(b.Rounds)-1 {
		return true
	}
	next := b.Rounds[round+1][offset/2]
	id := teamID
	if offset%2 == 0 {
		next.Team1ID = &id
	} else {
		next.Team2ID = &id
	}
	return false
}

package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/club-ladder/models"
	"github.com/Dosada05/club-ladder/repositories"
)

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисов.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrClubNotFound):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrMemberNotFound):
		return ErrMemberNotFound
	case errors.Is(err, repositories.ErrGameNotFound):
		return ErrGameNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrClubCodeConflict):
		return ErrClubCodeConflict
	case errors.Is(err, repositories.ErrMemberNameConflict):
		return ErrMemberNameConflict
	case errors.Is(err, repositories.ErrGameTieScore):
		return ErrTieScore
	default:
		return err
	}
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// validateLineup checks that both teams name four distinct, non-empty players.
func validateLineup(team1, team2 [2]string) ([2]string, [2]string, error) {
	for i := range team1 {
		team1[i] = normalizeName(team1[i])
		team2[i] = normalizeName(team2[i])
	}
	seen := make(map[string]struct{}, 4)
	for _, name := range [4]string{team1[0], team1[1], team2[0], team2[1]} {
		if name == "" {
			return team1, team2, fmt.Errorf("%w: all four players are required", ErrValidationFailed)
		}
		if _, dup := seen[name]; dup {
			return team1, team2, fmt.Errorf("%w: %s", ErrDuplicatePlayer, name)
		}
		seen[name] = struct{}{}
	}
	return team1, team2, nil
}

func validateScores(team1Score, team2Score int) error {
	if team1Score < 0 || team2Score < 0 {
		return fmt.Errorf("%w: scores cannot be negative", ErrValidationFailed)
	}
	if team1Score == team2Score {
		return fmt.Errorf("%w: %d-%d", ErrTieScore, team1Score, team2Score)
	}
	return nil
}

func countAdmins(members []*models.Member) int {
	admins := 0
	for _, m := range members {
		if m.Role == models.RoleAdmin {
			admins++
		}
	}
	return admins
}

func findMember(members []*models.Member, name string) *models.Member {
	for _, m := range members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

package services

import (
	"context"
	"testing"

	"github.com/Dosada05/club-ladder/brackets"
	"github.com/Dosada05/club-ladder/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sets(scores ...int) []models.SetScore {
	out := make([]models.SetScore, 0, len(scores)/2)
	for i := 0; i+1 < len(scores); i += 2 {
		out = append(out, models.SetScore{Team1Score: scores[i], Team2Score: scores[i+1]})
	}
	return out
}

func groupResult(team1, team2 int, set []models.SetScore) RecordResultInput {
	return RecordResultInput{Stage: models.StageGroup, Team1ID: team1, Team2ID: team2, Sets: set}
}

func knockoutResult(matchID int, set []models.SetScore) RecordResultInput {
	return RecordResultInput{Stage: models.StageKnockout, MatchID: matchID, Sets: set}
}

func newCupClub(t *testing.T, env *testEnv) {
	t.Helper()
	env.newClub(t, "CUP", models.TierPremium, "P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8")
}

func fourTeams() [][2]string {
	return [][2]string{{"P1", "P2"}, {"P3", "P4"}, {"P5", "P6"}, {"P7", "P8"}}
}

func TestTournamentService_CreateTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	newCupClub(t, env)

	tour, err := env.tournaments.CreateTournament(ctx, "CUP", CreateTournamentInput{Name: "Spring Cup", Teams: fourTeams(), NumGroups: 2})
	require.NoError(t, err)

	assert.Equal(t, models.StatusGroupStage, tour.Status)
	assert.Equal(t, 2, tour.KnockoutRounds)
	require.Len(t, tour.Teams, 4)
	assert.Equal(t, 1, tour.Teams[0].ID)
	assert.Equal(t, "P1 & P2", tour.Teams[0].Name)
	assert.Equal(t, map[int]int{1: 0, 2: 1, 3: 0, 4: 1}, tour.Groups)
	assert.Len(t, tour.Standings, 4)

	details, err := env.tournaments.GetTournament(ctx, "CUP", tour.ID)
	require.NoError(t, err)
	assert.Len(t, details.Fixtures, 2)
	assert.Len(t, details.Tables, 2)
	assert.Empty(t, details.Playable)

	list, err := env.tournaments.ListTournaments(ctx, "CUP")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTournamentService_CreateTournamentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	newCupClub(t, env)

	tests := []struct {
		name    string
		input   CreateTournamentInput
		wantErr error
	}{
		{"no name", CreateTournamentInput{Teams: fourTeams()}, ErrNameRequired},
		{"one team", CreateTournamentInput{Name: "x", Teams: fourTeams()[:1]}, ErrTournamentTeams},
		{"unknown player", CreateTournamentInput{Name: "x", Teams: [][2]string{{"P1", "P2"}, {"P3", "Ghost"}}}, ErrPlayerNotFound},
		{"player twice", CreateTournamentInput{Name: "x", Teams: [][2]string{{"P1", "P2"}, {"P3", "P1"}}}, ErrTournamentTeams},
		{"same player in team", CreateTournamentInput{Name: "x", Teams: [][2]string{{"P1", "P1"}, {"P3", "P4"}}}, ErrDuplicatePlayer},
		{"too many groups", CreateTournamentInput{Name: "x", Teams: fourTeams(), NumGroups: 5}, ErrInvalidGroupCount},
		{"too many rounds", CreateTournamentInput{Name: "x", Teams: fourTeams(), KnockoutRounds: brackets.MaxRounds + 1}, ErrInvalidRoundCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tournaments.CreateTournament(ctx, "CUP", tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTournamentService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	newCupClub(t, env)

	tour, err := env.tournaments.CreateTournament(ctx, "CUP", CreateTournamentInput{Name: "Spring Cup", Teams: fourTeams(), NumGroups: 2})
	require.NoError(t, err)

	_, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, knockoutResult(1, sets(21, 10, 21, 15)))
	assert.ErrorIs(t, err, ErrWrongStage)

	tour, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, groupResult(1, 3, sets(21, 10, 21, 15)))
	require.NoError(t, err)
	s1 := tour.Standings[1]
	assert.Equal(t, 1, s1.Played)
	assert.Equal(t, 42, s1.PointsFor)
	assert.Equal(t, 25, s1.PointsAgainst)
	assert.Equal(t, 2, s1.Points)
	assert.Equal(t, 1, tour.Standings[3].Lost)

	_, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, groupResult(2, 4, sets(15, 21, 18, 21)))
	require.NoError(t, err)

	p1 := env.member(t, "CUP", "P1")
	assert.Equal(t, 2, p1.GamesPlayed)
	assert.Equal(t, 2, p1.GamesWon)
	assert.Greater(t, p1.Rating, models.DefaultRating)

	tour, err = env.tournaments.AdvanceStage(ctx, "CUP", tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusKnockout, tour.Status)
	require.NotNil(t, tour.Bracket)
	first := tour.Bracket.Rounds[0]
	assert.Equal(t, []int{1, 3}, []int{*first[0].Team1ID, *first[0].Team2ID})
	assert.Equal(t, []int{4, 2}, []int{*first[1].Team1ID, *first[1].Team2ID})

	_, err = env.tournaments.AdvanceStage(ctx, "CUP", tour.ID)
	assert.ErrorIs(t, err, ErrWrongStage)
	_, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, groupResult(1, 3, sets(21, 10, 21, 15)))
	assert.ErrorIs(t, err, ErrWrongStage)
	_, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, knockoutResult(3, sets(21, 10, 21, 15)))
	assert.ErrorIs(t, err, ErrMatchNotReady)
	_, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, knockoutResult(99, sets(21, 10, 21, 15)))
	assert.ErrorIs(t, err, ErrKnockoutNotFound)

	tour, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, knockoutResult(1, sets(21, 19, 19, 21, 21, 18)))
	require.NoError(t, err)
	assert.Equal(t, 1, *tour.Bracket.Rounds[0][0].WinnerID)

	_, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, knockoutResult(1, sets(21, 10, 21, 15)))
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)

	tour, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, knockoutResult(2, sets(10, 21, 12, 21)))
	require.NoError(t, err)
	assert.Equal(t, 2, *tour.Bracket.Rounds[0][1].WinnerID)
	assert.Equal(t, models.StatusKnockout, tour.Status)

	tour, err = env.tournaments.RecordResult(ctx, "CUP", tour.ID, knockoutResult(3, sets(21, 5, 21, 7)))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, tour.Status)
	require.NotNil(t, tour.ChampionID)
	assert.Equal(t, 1, *tour.ChampionID)

	games, err := env.clubs.ListMatches(ctx, "CUP", 100)
	require.NoError(t, err)
	assert.Len(t, games, 2+2+3+2+2)
	assert.Equal(t, "Spring Cup", games[0].Court)

	assert.Len(t, env.notifier.rooms, 6)
	assert.Equal(t, brackets.TournamentRoom(tour.ID), env.notifier.rooms[0])
	assert.Equal(t, brackets.MessageStageAdvanced, env.notifier.types[2])
}

func TestTournamentService_RecordResultValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	newCupClub(t, env)

	tour, err := env.tournaments.CreateTournament(ctx, "CUP", CreateTournamentInput{Name: "Cup", Teams: fourTeams(), NumGroups: 2})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   RecordResultInput
		wantErr error
	}{
		{"split sets", groupResult(1, 3, sets(21, 10, 10, 21)), ErrNoWinner},
		{"tied set", groupResult(1, 3, sets(21, 21)), ErrTieScore},
		{"no sets", groupResult(1, 3, nil), ErrValidationFailed},
		{"unknown team", groupResult(1, 9, sets(21, 10)), ErrTeamsNotFound},
		{"same team", groupResult(1, 1, sets(21, 10)), ErrTeamsNotDistinct},
		{"other group", groupResult(1, 2, sets(21, 10)), ErrValidationFailed},
		{"bad stage", RecordResultInput{Stage: "final", Sets: sets(21, 10)}, ErrInvalidMatchStage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tournaments.RecordResult(ctx, "CUP", tour.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = env.tournaments.RecordResult(ctx, "CUP", 404, groupResult(1, 3, sets(21, 10)))
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	games, err := env.clubs.ListMatches(ctx, "CUP", 0)
	require.NoError(t, err)
	assert.Empty(t, games)
	details, err := env.tournaments.GetTournament(ctx, "CUP", tour.ID)
	require.NoError(t, err)
	for _, s := range details.Standings {
		assert.Zero(t, s.Played)
	}
}

func TestTournamentService_ByeCarriesToTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.newClub(t, "BYE", models.TierFree, "P1", "P2", "P3", "P4", "P5", "P6")

	tour, err := env.tournaments.CreateTournament(ctx, "BYE", CreateTournamentInput{
		Name:           "Mini",
		Teams:          [][2]string{{"P1", "P2"}, {"P3", "P4"}, {"P5", "P6"}},
		NumGroups:      1,
		KnockoutRounds: 2,
	})
	require.NoError(t, err)

	_, err = env.tournaments.RecordResult(ctx, "BYE", tour.ID, groupResult(1, 2, sets(21, 10, 21, 10)))
	require.NoError(t, err)
	_, err = env.tournaments.RecordResult(ctx, "BYE", tour.ID, groupResult(3, 2, sets(21, 10, 21, 10)))
	require.NoError(t, err)

	tour, err = env.tournaments.AdvanceStage(ctx, "BYE", tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusKnockout, tour.Status)
	assert.True(t, tour.Bracket.Rounds[0][1].IsBye)

	tour, err = env.tournaments.RecordResult(ctx, "BYE", tour.ID, knockoutResult(1, sets(18, 21, 17, 21)))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, tour.Status)
	require.NotNil(t, tour.ChampionID)
	assert.Equal(t, 3, *tour.ChampionID)
}

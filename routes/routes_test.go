package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Dosada05/club-ladder/brackets"
	"github.com/Dosada05/club-ladder/cache"
	"github.com/Dosada05/club-ladder/handlers"
	"github.com/Dosada05/club-ladder/repositories"
	"github.com/Dosada05/club-ladder/services"
	"github.com/Dosada05/club-ladder/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore()
	locks := services.NewClubLocks()
	rankings := cache.NewNoopRankingsCache()
	hub := brackets.NewHub(logger)

	clubService := services.NewClubService(store, locks, rankings, 0, logger)
	tournamentService := services.NewTournamentService(store, locks, rankings, hub, logger)
	sessionService := services.NewSessionService(clubService, "route-test-secret", time.Hour)
	archiveService := services.NewArchiveService(store, locks, storage.NewMemoryObjectStore(), logger)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Auth:       handlers.NewAuthHandler(clubService, sessionService),
		Club:       handlers.NewClubHandler(clubService),
		Match:      handlers.NewMatchHandler(clubService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Archive:    handlers.NewArchiveHandler(archiveService),
		WebSocket:  handlers.NewWebSocketHandler(hub, nil, logger),
	}, Options{
		Verifier: sessionService,
		Members:  clubService,
	})
	return &testAPI{t: t, router: router}
}

// do sends a JSON request and decodes the JSON response into out when given.
func (a *testAPI) do(method, path, token string, body interface{}, out interface{}) int {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

type sessionEnvelope struct {
	Session struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	} `json:"session"`
}

type rankingsEnvelope struct {
	Rankings []struct {
		Name   string `json:"name"`
		Rating *int   `json:"rating"`
	} `json:"rankings"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// setupClub creates a premium club with Alice as admin and Bob, Carol and
// Dave as members, returning Alice's and Bob's tokens.
func (a *testAPI) setupClub() (adminToken, memberToken string) {
	a.t.Helper()
	var created sessionEnvelope
	status := a.do(http.MethodPost, "/clubs", "", map[string]string{
		"club_code":         "RT",
		"club_name":         "Route Club",
		"admin_name":        "Alice",
		"subscription_tier": "premium",
	}, &created)
	require.Equal(a.t, http.StatusCreated, status)
	require.Equal(a.t, "admin", created.Session.Role)

	for _, name := range []string{"Bob", "Carol", "Dave"} {
		status := a.do(http.MethodPost, "/api/members", created.Session.Token, map[string]string{"name": name}, nil)
		require.Equal(a.t, http.StatusCreated, status)
	}

	var login sessionEnvelope
	status = a.do(http.MethodPost, "/login", "", map[string]string{"club_code": "RT", "player_name": "Bob"}, &login)
	require.Equal(a.t, http.StatusOK, status)
	require.Equal(a.t, "member", login.Session.Role)
	return created.Session.Token, login.Session.Token
}

func TestRoutes_Health(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", "", nil, nil))
}

func TestRoutes_AuthRequired(t *testing.T) {
	api := newTestAPI(t)

	var body errorEnvelope
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/club", "", nil, &body))
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/club", "forged.token.value", nil, nil))
}

func TestRoutes_Login(t *testing.T) {
	api := newTestAPI(t)
	api.setupClub()

	var body errorEnvelope
	status := api.do(http.MethodPost, "/login", "", map[string]string{"club_code": "RT", "player_name": "Zed"}, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unknown club code or player name", body.Error)

	status = api.do(http.MethodPost, "/login", "", map[string]string{"club_code": "RT"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = api.do(http.MethodPost, "/clubs", "", map[string]string{
		"club_code": "RT", "club_name": "Again", "admin_name": "Zoe",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestRoutes_RecordAndRank(t *testing.T) {
	api := newTestAPI(t)
	admin, member := api.setupClub()

	var recorded struct {
		Match struct {
			ID     int    `json:"id"`
			Court  string `json:"court"`
			Winner int    `json:"winner"`
		} `json:"match"`
	}
	status := api.do(http.MethodPost, "/api/matches", member, map[string]interface{}{
		"team1":       []string{"Alice", "Bob"},
		"team2":       []string{"Carol", "Dave"},
		"team1_score": 21,
		"team2_score": 17,
	}, &recorded)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Manual Entry", recorded.Match.Court)
	assert.Equal(t, 1, recorded.Match.Winner)

	var ranks rankingsEnvelope
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/rankings", member, nil, &ranks))
	require.Len(t, ranks.Rankings, 4)
	assert.Equal(t, "Alice", ranks.Rankings[0].Name)
	require.NotNil(t, ranks.Rankings[0].Rating)
	assert.Equal(t, 1216, *ranks.Rankings[0].Rating)

	var byWins rankingsEnvelope
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/rankings?use_rating=false", member, nil, &byWins))
	require.Len(t, byWins.Rankings, 4)
	assert.Nil(t, byWins.Rankings[0].Rating)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/rankings?use_rating=maybe", member, nil, nil))

	matchPath := "/api/matches/" + strconv.Itoa(recorded.Match.ID)
	edit := map[string]int{"team1_score": 15, "team2_score": 21}
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPut, matchPath, member, edit, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, matchPath, admin, edit, nil))

	var replayed rankingsEnvelope
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/rankings", member, nil, &replayed))
	require.Len(t, replayed.Rankings, 4)
	assert.Equal(t, "Carol", replayed.Rankings[0].Name)
	require.NotNil(t, replayed.Rankings[0].Rating)
	assert.Equal(t, 1216, *replayed.Rankings[0].Rating)

	var listed struct {
		Matches []json.RawMessage `json:"matches"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/matches?limit=5", member, nil, &listed))
	assert.Len(t, listed.Matches, 1)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, matchPath, admin, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, matchPath, admin, nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodDelete, "/api/matches/abc", admin, nil, nil))
}

func TestRoutes_RecordValidation(t *testing.T) {
	api := newTestAPI(t)
	_, member := api.setupClub()

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"tie", map[string]interface{}{"team1": []string{"Alice", "Bob"}, "team2": []string{"Carol", "Dave"}, "team1_score": 21, "team2_score": 21}, http.StatusBadRequest},
		{"duplicate", map[string]interface{}{"team1": []string{"Alice", "Bob"}, "team2": []string{"Alice", "Dave"}, "team1_score": 21, "team2_score": 10}, http.StatusBadRequest},
		{"unknown player", map[string]interface{}{"team1": []string{"Alice", "Bob"}, "team2": []string{"Carol", "Zed"}, "team1_score": 21, "team2_score": 10}, http.StatusNotFound},
		{"unknown field", map[string]interface{}{"team1": []string{"Alice", "Bob"}, "team2": []string{"Carol", "Dave"}, "score": 21}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, api.do(http.MethodPost, "/api/matches", member, tt.body, nil))
		})
	}
}

func TestRoutes_RosterAdmin(t *testing.T) {
	api := newTestAPI(t)
	admin, member := api.setupClub()

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/members", member, map[string]string{"name": "Eve"}, nil))
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/api/members", admin, map[string]string{"name": "Bob"}, nil))
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/api/members/Alice", admin, nil, nil))
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/api/members/Alice/demote", admin, nil, nil))

	var promoted struct {
		Member struct {
			Role string `json:"role"`
		} `json:"member"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/members/Bob/promote", admin, nil, &promoted))
	assert.Equal(t, "admin", promoted.Member.Role)

	// Bob's token still says "member", the roster says admin.
	assert.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/members", member, map[string]string{"name": "Eve"}, nil))
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/members/Eve", member, nil, nil))

	var info struct {
		ClubInfo struct {
			TotalMembers int `json:"total_members"`
			Player       struct {
				Name string `json:"name"`
				Role string `json:"role"`
			} `json:"player"`
		} `json:"club_info"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/club", member, nil, &info))
	assert.Equal(t, 4, info.ClubInfo.TotalMembers)
	assert.Equal(t, "Bob", info.ClubInfo.Player.Name)
	assert.Equal(t, "admin", info.ClubInfo.Player.Role)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPut, "/api/club/courts", admin, map[string]int{"courts": 0}, nil))
	assert.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/club/courts", admin, map[string]int{"courts": 6}, nil))
}

func TestRoutes_Pairings(t *testing.T) {
	api := newTestAPI(t)
	_, member := api.setupClub()

	var suggestions struct {
		Pairings struct {
			Metric      string            `json:"metric"`
			Suggestions []json.RawMessage `json:"suggestions"`
		} `json:"pairings"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/pairings?limit=2", member, nil, &suggestions))
	assert.Len(t, suggestions.Pairings.Suggestions, 2)

	var best struct {
		Match struct {
			Balance float64 `json:"balance"`
		} `json:"match"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/pairings/best", member, map[string][]string{"players": {}}, &best))
	assert.Zero(t, best.Match.Balance)

	status := api.do(http.MethodPost, "/api/pairings/best", member, map[string][]string{"players": {"Alice", "Bob"}}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var plan struct {
		CourtPlan struct {
			Courts []json.RawMessage `json:"courts"`
		} `json:"court_plan"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/courts/assign", member, map[string][]string{"players": {}}, &plan))
	assert.Len(t, plan.CourtPlan.Courts, 1)
}

func TestRoutes_Tournament(t *testing.T) {
	api := newTestAPI(t)
	admin, member := api.setupClub()

	input := map[string]interface{}{
		"name":  "Club Cup",
		"teams": [][2]string{{"Alice", "Bob"}, {"Carol", "Dave"}},
	}
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/tournaments", member, input, nil))

	var created struct {
		Tournament struct {
			ID     int    `json:"id"`
			Status string `json:"status"`
		} `json:"tournament"`
	}
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/tournaments", admin, input, &created))
	assert.Equal(t, "group_stage", created.Tournament.Status)

	base := "/api/tournaments/" + strconv.Itoa(created.Tournament.ID)
	result := map[string]interface{}{
		"stage":    "group",
		"team1_id": 1,
		"team2_id": 2,
		"sets":     []map[string]int{{"team1_score": 21, "team2_score": 12}, {"team1_score": 21, "team2_score": 19}},
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/results", member, result, nil))

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, base+"/advance", member, nil, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/advance", admin, nil, nil))
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, base+"/advance", admin, nil, nil))

	final := map[string]interface{}{
		"stage":    "knockout",
		"match_id": 1,
		"sets":     []map[string]int{{"team1_score": 21, "team2_score": 15}, {"team1_score": 21, "team2_score": 11}},
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/results", member, final, nil))

	var details struct {
		Tournament struct {
			Status     string `json:"status"`
			ChampionID *int   `json:"champion_id"`
		} `json:"tournament"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, base, member, nil, &details))
	assert.Equal(t, "completed", details.Tournament.Status)
	require.NotNil(t, details.Tournament.ChampionID)
	assert.Equal(t, 1, *details.Tournament.ChampionID)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/tournaments/999", member, nil, nil))
}

func TestRoutes_Archive(t *testing.T) {
	api := newTestAPI(t)
	admin, member := api.setupClub()

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/archive", member, nil, nil))

	var archived struct {
		Archive struct {
			Key string `json:"key"`
		} `json:"archive"`
	}
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/archive", admin, nil, &archived))
	assert.Contains(t, archived.Archive.Key, "archives/RT/")

	var listed struct {
		Archives []struct {
			Key string `json:"key"`
		} `json:"archives"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/archives", admin, nil, &listed))
	require.Len(t, listed.Archives, 1)
	assert.Equal(t, archived.Archive.Key, listed.Archives[0].Key)
}

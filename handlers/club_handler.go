package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/club-ladder/middleware"
	"github.com/Dosada05/club-ladder/services"
	"github.com/go-chi/chi/v5"
)

// ClubHandler serves the club, roster, ranking and pairing endpoints. The
// club always comes from the caller's session.
type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(cs services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: cs}
}

type updateCourtsInput struct {
	Courts int `json:"courts"`
}

type addMemberInput struct {
	Name string `json:"name"`
}

type playersInput struct {
	Players []string `json:"players"`
}

func currentIdentity(w http.ResponseWriter, r *http.Request) (*services.Identity, bool) {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current member")
		return nil, false
	}
	return identity, true
}

func (h *ClubHandler) GetClubInfo(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	info, err := h.clubService.GetClubInfo(r.Context(), identity.ClubCode, identity.PlayerName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club_info": info}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) UpdateCourts(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	var input updateCourtsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.UpdateCourts(r.Context(), identity.ClubCode, input.Courts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	members, err := h.clubService.ListMembers(r.Context(), identity.ClubCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	var input addMemberInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	member, err := h.clubService.AddMember(r.Context(), identity.ClubCode, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"member": member}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.clubService.RemoveMember(r.Context(), identity.ClubCode, identity.PlayerName, name); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClubHandler) PromoteMember(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.clubService.PromoteMember)
}

func (h *ClubHandler) DemoteMember(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.clubService.DemoteMember)
}

func (h *ClubHandler) changeRole(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, clubCode, name string) error) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	if err := change(r.Context(), identity.ClubCode, name); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	member, err := h.clubService.GetMember(r.Context(), identity.ClubCode, name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"member": member}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	useRating := true
	if raw := r.URL.Query().Get("use_rating"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequestResponse(w, r, errors.New("use_rating must be a boolean"))
			return
		}
		useRating = v
	}

	rankings, err := h.clubService.GetRankings(r.Context(), identity.ClubCode, useRating)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) SuggestPairings(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	limit, err := getIntQuery(r, "limit")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.clubService.SuggestPairings(r.Context(), identity.ClubCode, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pairings": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) BestMatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	var input playersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	best, err := h.clubService.BestMatch(r.Context(), identity.ClubCode, input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": best}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) AssignCourts(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	var input playersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	plan, err := h.clubService.AssignCourts(r.Context(), identity.ClubCode, input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"court_plan": plan}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

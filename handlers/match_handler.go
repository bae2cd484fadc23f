package handlers

import (
	"net/http"

	"github.com/Dosada05/club-ladder/services"
)

type MatchHandler struct {
	clubService services.ClubService
}

func NewMatchHandler(cs services.ClubService) *MatchHandler {
	return &MatchHandler{clubService: cs}
}

type editMatchInput struct {
	Team1Score int `json:"team1_score"`
	Team2Score int `json:"team2_score"`
}

func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	limit, err := getIntQuery(r, "limit")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.clubService.ListMatches(r.Context(), identity.ClubCode, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	var input services.RecordMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.clubService.RecordMatch(r.Context(), identity.ClubCode, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) EditMatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input editMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.clubService.EditMatch(r.Context(), identity.ClubCode, matchID, input.Team1Score, input.Team2Score); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "match updated, ratings recomputed"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.clubService.DeleteMatch(r.Context(), identity.ClubCode, matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	if err := h.clubService.Recompute(r.Context(), identity.ClubCode); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "ratings recomputed"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

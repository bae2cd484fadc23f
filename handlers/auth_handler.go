package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/club-ladder/services"
)

type AuthHandler struct {
	clubService    services.ClubService
	sessionService services.SessionService
}

func NewAuthHandler(cs services.ClubService, ss services.SessionService) *AuthHandler {
	return &AuthHandler{
		clubService:    cs,
		sessionService: ss,
	}
}

type loginInput struct {
	ClubCode   string `json:"club_code"`
	PlayerName string `json:"player_name"`
}

// CreateClub registers a club with its first admin and logs the admin in.
func (h *AuthHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var input services.CreateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, admin, err := h.clubService.CreateClub(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	session, err := h.sessionService.Issue(club, admin)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"club":    club,
		"member":  admin,
		"session": session,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.ClubCode == "" || input.PlayerName == "" {
		badRequestResponse(w, r, errors.New("club_code and player_name are required"))
		return
	}

	session, err := h.sessionService.Login(r.Context(), input.ClubCode, input.PlayerName)
	if err != nil {
		if errors.Is(err, services.ErrClubNotFound) || errors.Is(err, services.ErrPlayerNotFound) {
			unauthorizedResponse(w, r, "unknown club code or player name")
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

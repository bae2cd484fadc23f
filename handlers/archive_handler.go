package handlers

import (
	"net/http"

	"github.com/Dosada05/club-ladder/services"
)

type ArchiveHandler struct {
	archiveService services.ArchiveService
}

func NewArchiveHandler(as services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archiveService: as}
}

func (h *ArchiveHandler) ArchiveClub(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	result, err := h.archiveService.ArchiveClub(r.Context(), identity.ClubCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"archive": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArchiveHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	archives, err := h.archiveService.ListArchives(r.Context(), identity.ClubCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"archives": archives}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

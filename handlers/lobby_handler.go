package handlers

import (
	"net/http"
	"time"

	"github.com/gamerpro/gamerpro/services"
)

// LobbyHandler serves the competitor-facing tournament snapshot that the
// frontend polls while a stage is running.
type LobbyHandler struct {
	lobbyService  services.LobbyService
	resultService services.ResultService
}

func NewLobbyHandler(lobbyService services.LobbyService, resultService services.ResultService) *LobbyHandler {
	return &LobbyHandler{lobbyService: lobbyService, resultService: resultService}
}

func (h *LobbyHandler) GetLobby(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.lobbyService.GetLobby(r.Context(), tournamentID, time.Now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"lobby": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LobbyHandler) ListQualifications(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	quals, err := h.resultService.ListQualifications(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"qualifications": quals}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

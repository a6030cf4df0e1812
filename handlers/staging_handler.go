package handlers

import (
	"errors"
	"net/http"

	"github.com/gamerpro/gamerpro/services"
)

// StagingHandler exposes the admin-side stage progression operations: drawing
// groups for the current stage and moving the tournament to the next one.
type StagingHandler struct {
	stagingService services.StagingService
}

func NewStagingHandler(stagingService services.StagingService) *StagingHandler {
	return &StagingHandler{stagingService: stagingService}
}

func (h *StagingHandler) GenerateGroups(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.stagingService.GenerateGroups(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceStage requires an explicit confirmation flag in the body: the
// operation changes which pool every subsequent draw reads from, so a stray
// request must not advance the tournament.
func (h *StagingHandler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Confirm bool `json:"confirm"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if !input.Confirm {
		badRequestResponse(w, r, errors.New("stage advance must be confirmed"))
		return
	}

	tournament, err := h.stagingService.AdvanceStage(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StagingHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.stagingService.ListGroups(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

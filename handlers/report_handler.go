package handlers

import (
	"errors"
	"net/http"

	"github.com/mauer01/5D-Chess-League-Bot/middleware"
	"github.com/mauer01/5D-Chess-League-Bot/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

type reportInput struct {
	OpponentID int64  `json:"opponent_id"`
	GameNumber int    `json:"game_number"`
	Claim      string `json:"claim"`
}

// SubmitReport records one side's result claim for a game. The first
// claim waits for the opponent; a matching opposite claim confirms the
// game and, on the second game, completes the match and applies ratings.
func (h *ReportHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	reporterID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "failed to identify current player")
		return
	}

	var input reportInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.OpponentID <= 0 {
		badRequestResponse(w, r, errors.New("opponent_id must be a positive integer"))
		return
	}

	outcome, err := h.reportService.SubmitReport(r.Context(), reporterID, input.OpponentID, input.GameNumber, input.Claim)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if outcome.Status == services.StatusAwaitingConfirmation {
		status = http.StatusAccepted
	}
	if err := writeJSON(w, status, jsonResponse{"report": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelReport withdraws the caller's own unconfirmed claim. The claim in
// the body must match the one on file.
func (h *ReportHandler) CancelReport(w http.ResponseWriter, r *http.Request) {
	reporterID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "failed to identify current player")
		return
	}

	var input struct {
		OpponentID int64  `json:"opponent_id"`
		Claim      string `json:"claim"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.OpponentID <= 0 {
		badRequestResponse(w, r, errors.New("opponent_id must be a positive integer"))
		return
	}

	if err := h.reportService.CancelReport(r.Context(), reporterID, input.OpponentID, input.Claim); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"cancelled": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

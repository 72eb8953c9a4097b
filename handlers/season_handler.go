package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mauer01/5D-Chess-League-Bot/services"
)

type SeasonHandler struct {
	seasonService    services.SeasonService
	standingsService services.StandingsService
}

func NewSeasonHandler(ss services.SeasonService, sts services.StandingsService) *SeasonHandler {
	return &SeasonHandler{seasonService: ss, standingsService: sts}
}

func (h *SeasonHandler) StartSeason(w http.ResponseWriter, r *http.Request) {
	result, err := h.seasonService.StartSeason(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"season": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) EndSeason(w http.ResponseWriter, r *http.Request) {
	result, err := h.seasonService.EndSeason(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPairings lists pairings, optionally filtered by ?season=N and
// ?division=name. Without a season it falls back to the latest one.
func (h *SeasonHandler) GetPairings(w http.ResponseWriter, r *http.Request) {
	var seasonNumber *int
	if seasonStr := r.URL.Query().Get("season"); seasonStr != "" {
		parsed, err := strconv.Atoi(seasonStr)
		if err != nil || parsed <= 0 {
			badRequestResponse(w, r, errors.New("season must be a positive integer"))
			return
		}
		seasonNumber = &parsed
	}

	var division *string
	if divStr := r.URL.Query().Get("division"); divStr != "" {
		division = &divStr
	}

	pairings, err := h.seasonService.GetPairings(r.Context(), seasonNumber, division)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pairings": pairings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetRanking serves the standings table of one division in one season.
func (h *SeasonHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	seasonStr := chi.URLParam(r, "season")
	seasonNumber, err := strconv.Atoi(seasonStr)
	if err != nil || seasonNumber <= 0 {
		badRequestResponse(w, r, errors.New("invalid season number in URL"))
		return
	}

	division := chi.URLParam(r, "division")
	if division == "" {
		badRequestResponse(w, r, errors.New("missing division in URL"))
		return
	}

	standings, err := h.standingsService.DivisionRanking(r.Context(), seasonNumber, division)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

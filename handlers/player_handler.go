package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mauer01/5D-Chess-League-Bot/middleware"
	"github.com/mauer01/5D-Chess-League-Bot/models"
	"github.com/mauer01/5D-Chess-League-Bot/services"
)

// leaderboardEntry decorates a player row with the derived win rate.
type leaderboardEntry struct {
	*models.Player
	TotalGames int     `json:"total_games"`
	WinRate    float64 `json:"win_rate"`
}

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

func getPlayerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "playerID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid player ID in URL")
	}
	return id, nil
}

func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "failed to identify current player")
		return
	}

	player, err := h.playerService.Register(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "failed to identify current player")
		return
	}

	if err := h.playerService.SignUp(r.Context(), playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"signed_up": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	playerID, err := getPlayerIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.playerService.GetStats(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Leaderboard serves the top players ordered by rating. Accepts ?limit=N
// and an optional ?players=1,2,3 filter restricting the board to a subset,
// which chat frontends use to rank only the members of one channel.
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("limit must be an integer"))
			return
		}
		limit = parsed
	}

	var filterIDs []int64
	if playersStr := r.URL.Query().Get("players"); playersStr != "" {
		for _, part := range strings.Split(playersStr, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				badRequestResponse(w, r, errors.New("players must be a comma-separated list of positive integers"))
				return
			}
			filterIDs = append(filterIDs, id)
		}
	}

	players, err := h.playerService.Leaderboard(r.Context(), limit, filterIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	entries := make([]leaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = leaderboardEntry{Player: p, TotalGames: p.TotalGames(), WinRate: p.WinRate()}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

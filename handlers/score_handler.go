package handlers

import (
	"net/http"

	"github.com/sundayleague/match-system/middleware"
	"github.com/sundayleague/match-system/services"
)

type ScoreHandler struct {
	scoreService services.ScoreService
}

func NewScoreHandler(ss services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: ss}
}

type submitScoreInput struct {
	Score string `json:"score"`
}

// SubmitHandler обрабатывает POST /matches/{matchID}/score
func (h *ScoreHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	captainID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to submit a score")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.scoreService.SubmitScore(r.Context(), matchID, captainID, input.Score)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"outcome": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StatusHandler обрабатывает GET /matches/{matchID}/score
func (h *ScoreHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := h.scoreService.GetScoreStatus(r.Context(), matchID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"score_status": status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

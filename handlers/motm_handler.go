package handlers

import (
	"net/http"

	"github.com/sundayleague/match-system/middleware"
	"github.com/sundayleague/match-system/services"
)

type MotmHandler struct {
	motmService services.MotmService
}

func NewMotmHandler(ms services.MotmService) *MotmHandler {
	return &MotmHandler{motmService: ms}
}

type voteInput struct {
	VotedPlayerID int `json:"voted_player_id"`
}

// VoteHandler обрабатывает POST /matches/{matchID}/motm
func (h *MotmHandler) VoteHandler(w http.ResponseWriter, r *http.Request) {
	voterID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to vote")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input voteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.motmService.Vote(r.Context(), matchID, voterID, input.VotedPlayerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"vote": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResultsHandler обрабатывает GET /matches/{matchID}/motm
func (h *MotmHandler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.motmService.GetResults(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

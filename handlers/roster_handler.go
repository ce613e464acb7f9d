package handlers

import (
	"net/http"

	"github.com/sundayleague/match-system/middleware"
	"github.com/sundayleague/match-system/models"
	"github.com/sundayleague/match-system/services"
)

type RosterHandler struct {
	rosterService services.RosterService
}

func NewRosterHandler(rs services.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rs}
}

type joinRequestInput struct {
	TeamID int             `json:"team_id"`
	Side   models.TeamSide `json:"side"`
}

// RequestJoinHandler обрабатывает POST /matches/{matchID}/join
func (h *RosterHandler) RequestJoinHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to join a match")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input joinRequestInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.rosterService.RequestJoin(r.Context(), matchID, playerID, input.TeamID, input.Side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type joinDecisionInput struct {
	Decision services.JoinDecision `json:"decision"`
}

// DecideJoinHandler обрабатывает POST /matches/{matchID}/roster/{entryID}/decision
func (h *RosterHandler) DecideJoinHandler(w http.ResponseWriter, r *http.Request) {
	captainID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	entryID, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input joinDecisionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rosterService.DecideJoin(r.Context(), matchID, entryID, captainID, input.Decision); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "decided"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRosterHandler обрабатывает GET /matches/{matchID}/roster
func (h *RosterHandler) ListRosterHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.rosterService.ListRoster(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

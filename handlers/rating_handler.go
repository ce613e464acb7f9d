package handlers

import (
	"net/http"

	"github.com/sundayleague/match-system/middleware"
	"github.com/sundayleague/match-system/services"
)

type RatingHandler struct {
	ratingService services.RatingService
}

func NewRatingHandler(rs services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: rs}
}

type submitRatingsInput struct {
	Ratings []services.RatingInput `json:"ratings"`
}

// SubmitHandler обрабатывает POST /matches/{matchID}/ratings
func (h *RatingHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	raterID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to submit ratings")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitRatingsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.ratingService.SubmitRatings(r.Context(), matchID, raterID, input.Ratings); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"status": "submitted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResultsHandler обрабатывает GET /matches/{matchID}/ratings
func (h *RatingHandler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.ratingService.GetResults(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sundayleague/match-system/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	if err != nil {
		return err
	}

	return nil
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s URL parameter", param)
	}
	return id, nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error", slog.String("path", r.URL.Path), slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unprocessableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Не найдено
	case errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrProposalNotFound),
		errors.Is(err, services.ErrRosterEntryNotFound):
		notFoundResponse(w, r)

	// Запрещено (не та роль)
	case errors.Is(err, services.ErrNotCaptain),
		errors.Is(err, services.ErrNotRosterMember),
		errors.Is(err, services.ErrWrongSideTarget):
		forbiddenResponse(w, r, err.Error())

	// Недопустимое состояние, вместимость, повторные действия — конфликт
	case errors.Is(err, services.ErrInvalidMatchState),
		errors.Is(err, services.ErrRatingsClosed),
		errors.Is(err, services.ErrVotingClosed),
		errors.Is(err, services.ErrProposalNotPending),
		errors.Is(err, services.ErrSideFull),
		errors.Is(err, services.ErrAlreadyInMatch),
		errors.Is(err, services.ErrAlreadyRated),
		errors.Is(err, services.ErrAlreadyVoted),
		errors.Is(err, services.ErrProposalAlreadyPending),
		errors.Is(err, services.ErrCaptainAlreadyMember):
		conflictResponse(w, r, err.Error())

	// Превышен бюджет оценок
	case errors.Is(err, services.ErrRatingBudgetExceeded):
		unprocessableResponse(w, r, err.Error())

	// Ошибки валидации
	case errors.Is(err, services.ErrInvalidMatchType),
		errors.Is(err, services.ErrInvalidMatchFormat),
		errors.Is(err, services.ErrInvalidTeamSide),
		errors.Is(err, services.ErrInvalidProposalKind),
		errors.Is(err, services.ErrInvalidJoinDecision),
		errors.Is(err, services.ErrSideTeamMismatch),
		errors.Is(err, services.ErrProposalOwnTeam),
		errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrInvalidRatingScore),
		errors.Is(err, services.ErrEmptyRatingBatch),
		errors.Is(err, services.ErrDuplicateRatingTarget),
		errors.Is(err, services.ErrSelfVote):
		badRequestResponse(w, r, err)

	default:
		serverErrorResponse(w, r, err)
	}
}

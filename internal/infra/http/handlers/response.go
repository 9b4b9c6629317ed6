package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type ErrorResponse struct {
	Success   bool                      `json:"success"`
	Error     string                    `json:"error"`
	Code      string                    `json:"code"`
	Retryable bool                      `json:"retryable"`
	Fields    []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: msg, Code: code})
}

// writeUseCaseError traduz o erro do use case para status HTTP + corpo padrão.
func writeUseCaseError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, statusForCode(de.Code), ErrorResponse{
			Success:   false,
			Error:     de.Message,
			Code:      de.Code,
			Retryable: de.Retryable,
			Fields:    de.Fields,
		})
		return
	}

	log.ErrorContext(r.Context(), "❌ erro interno", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Success:   false,
		Error:     "Failed to process request",
		Code:      usecase.ErrorCode(err),
		Retryable: true,
	})
}

func statusForCode(code string) int {
	switch code {
	case usecase.CodeValidation, usecase.CodeInvalidOrder, usecase.CodeInvalidJunkRule:
		return http.StatusBadRequest
	case usecase.CodeRotationNotFound, usecase.CodeNoRotationForSource,
		usecase.CodeLeadNotFound, usecase.CodeSlotNotFound:
		return http.StatusNotFound
	case usecase.CodeRotationNotLaunched, usecase.CodeEmptyRoster, usecase.CodeNoAvailableParticipant:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido: "+err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

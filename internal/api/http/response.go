package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/security"
	"blooddrive-backend/internal/service"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 4 << 20

type errorBody struct {
	Error string     `json:"error"`
	Field string     `json:"field,omitempty"`
	Rows  []rowError `json:"rows,omitempty"`
}

type rowError struct {
	Row   int    `json:"row"`
	Field string `json:"field,omitempty"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps the domain error taxonomy onto HTTP status codes. Store
// and unknown errors never leak their detail to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		bulkErr *service.BulkError
		valErr  *domain.ValidationError
	)
	switch {
	case errors.As(err, &bulkErr):
		body := errorBody{Error: "one or more rows are invalid"}
		for _, re := range bulkErr.Rows {
			row := rowError{Row: re.Row, Error: re.Err.Error()}
			var fe *domain.ValidationError
			if errors.As(re.Err, &fe) {
				row.Field, row.Error = fe.Field, fe.Message
			}
			body.Rows = append(body.Rows, row)
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: valErr.Message, Field: valErr.Field})
	case domain.IsNotFound(err):
		writeMessage(w, http.StatusNotFound, err.Error())
	case domain.IsPermission(err):
		writeMessage(w, http.StatusForbidden, err.Error())
	case domain.IsConflict(err):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrWrongTokenType):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case domain.IsRetryable(err):
		logger.ErrorContext(r.Context(), "Store unavailable", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "service temporarily unavailable, please retry")
	default:
		logger.ErrorContext(r.Context(), "Unhandled error", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("body", "request body is required")
		}
		return domain.NewValidationError("body", "malformed JSON: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return int32(id), nil
}

func queryFloat(r *http.Request, name string, required bool) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if required {
			return 0, domain.NewValidationError(name, "is required")
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be a number")
	}
	return v, nil
}

func queryInt32(r *http.Request, name string, def int32) (int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return int32(v), nil
}

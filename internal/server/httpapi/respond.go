package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/timekeeper/internal/common"
)

const maxBodyBytes = 1 << 20

// Error kinds carried in the "kind" field of error responses.
const (
	kindValidation   = "validation"
	kindNotFound     = "not_found"
	kindConflict     = "conflict"
	kindUnauthorized = "unauthorized"
	kindForbidden    = "forbidden"
	kindInternal     = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classify maps a service error onto an HTTP status and response body.
func classify(err error) (int, errorResponse) {
	var fe *common.FieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, errorResponse{Error: fe.Message, Kind: kindValidation, Field: fe.Field}
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: kindValidation}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errorResponse{Error: "not found", Kind: kindNotFound}
	case errors.Is(err, common.ErrTimesheetSubmitted):
		return http.StatusConflict, errorResponse{Error: "timesheet is already submitted", Kind: kindConflict}
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, errorResponse{Error: "conflict", Kind: kindConflict}
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: "token expired", Kind: kindUnauthorized}
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: "refresh token expired", Kind: kindUnauthorized}
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized", Kind: kindUnauthorized}
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "forbidden", Kind: kindForbidden}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: kindInternal}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	writeJSON(w, status, body)
}

// decodeJSON reads a single JSON document from r into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewFieldError("body", "request body is empty")
		}
		return common.NewFieldError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"prospect-engine/internal/leads"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeStoreError maps lead store failures onto distinct status codes so
// callers can tell them apart from an empty batch.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		nf *leads.NotFoundError
		de *leads.DecodeError
		re *leads.ReadError
		we *leads.WriteError
	)
	switch {
	case errors.As(err, &nf):
		WriteError(w, r, http.StatusNotFound, "store_not_found", err.Error())
	case errors.As(err, &de):
		WriteError(w, r, http.StatusUnprocessableEntity, "store_decode", err.Error())
	case errors.As(err, &re):
		WriteError(w, r, http.StatusInternalServerError, "store_read", err.Error())
	case errors.As(err, &we):
		WriteError(w, r, http.StatusInternalServerError, "store_write", err.Error())
	case errors.Is(err, leads.ErrLocked):
		WriteError(w, r, http.StatusConflict, "store_locked", err.Error())
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emberlink/fourheat-core/internal/fourheat"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeInternal    = "internal_error"
	ErrCodeUnavailable = "device_unavailable"
	ErrCodeUpstream    = "device_protocol_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDeviceError maps errors from the device layer onto HTTP responses.
// Protocol violations surface as 502 since the module answered but with
// something unusable; transport failures and an uninitialised device are 503.
func writeDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fourheat.ErrUnknownSensor):
		writeNotFound(w, "unknown sensor")
	case errors.Is(err, fourheat.ErrReadOnlySensor):
		writeBadRequest(w, "sensor is read only")
	case errors.Is(err, fourheat.ErrInvalidCommand):
		writeBadRequest(w, "command not supported by device")
	case errors.Is(err, fourheat.ErrInvalidMessage):
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, "device returned a malformed response")
	case errors.Is(err, fourheat.ErrConnection):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "device unreachable")
	case errors.Is(err, fourheat.ErrNotInitialized):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "device not initialised")
	case errors.Is(err, fourheat.ErrAlreadyInitializing):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "device initialisation in progress")
	default:
		writeInternalError(w, "device request failed")
	}
}

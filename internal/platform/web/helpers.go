package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// RespondMessage writes a {"message": ...} body.
func RespondMessage(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"message": message})
}

// ParsePositiveParam reads an integer URL parameter and requires it to be greater than zero.
// On failure it writes a 400 response with the given message and returns false.
func ParsePositiveParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key, message string) (int32, bool) {
	value := chi.URLParam(r, key)
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil || intValue <= 0 {
		logger.WarnContext(r.Context(), "Invalid URL parameter", "param", key, "value", value)
		RespondMessage(w, logger, http.StatusBadRequest, message)
		return 0, false
	}
	return int32(intValue), true
}

// MustParam returns a non-empty URL parameter or writes a 400 response.
func MustParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) (string, bool) {
	value := chi.URLParam(r, key)
	if value == "" {
		RespondMessage(w, logger, http.StatusBadRequest, fmt.Sprintf("%s url parameter is required", key))
		return "", false
	}
	return value, true
}

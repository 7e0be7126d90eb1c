package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fluentlink/fluentlink-be/internal/apperror"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response body")
	}
}

// writeError maps a service error onto the HTTP response. Anything that is
// not a typed application error becomes an opaque 500 so no internal detail
// leaks to the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body := map[string]interface{}{"message": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["missingFields"] = appErr.Fields
		}
		writeJSON(w, appErr.Status, body)
		return
	}

	log.Error().Err(err).Msg("Unhandled error in request handler")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
}

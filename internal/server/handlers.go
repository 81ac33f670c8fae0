package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response
func writeJSON(log zerolog.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

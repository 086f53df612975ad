package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/stanstork/visitor-kiosk-api/internal/apperr"
)

type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error": message}. Storage failures are logged
// with their cause and reach the client as a generic message.
func writeError(w http.ResponseWriter, logger zerolog.Logger, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("kind", apperr.KindOf(err).String()).
		Msg("request failed")

	writeJSON(w, status, errorBody{Error: apperr.PublicMessage(err)})
}

// pathID parses a numeric route variable. Anything unparsable cannot name an
// existing row, so it is reported as not found.
func pathID(r *http.Request, name, entity string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound(entity + " not found")
	}
	return id, nil
}

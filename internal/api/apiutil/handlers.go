package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// HandlerError carries the status and client-facing message for a failed
// request. Err is logged but never sent.
type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError responds with {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	if err := WriteJSON(w, status, errorBody{Error: message}); err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to write error response")
	}
}

// WriteHandlerError writes err as JSON. Anything that is not a HandlerError
// becomes a 500 with a generic message.
func WriteHandlerError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var herr HandlerError
	if !errors.As(err, &herr) {
		logger.Error().Err(err).Msg("Unhandled request error")
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	event := logger.Warn()
	if herr.Status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(herr.Err).Int("status", herr.Status).Msg(herr.Message)
	WriteError(w, herr.Status, herr.Message)
}

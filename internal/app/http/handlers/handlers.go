package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"eurocar/orcamentos/internal/app/session"
	"eurocar/orcamentos/internal/domain/quote"
)

type Handlers struct {
	Session *session.Session
	Log     *zap.Logger
}

func New(s *session.Session, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{Session: s, Log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusOf maps the quote error taxonomy onto HTTP.
func statusOf(err error) int {
	switch {
	case errors.Is(err, quote.ErrValidation),
		errors.Is(err, quote.ErrInvalidAmount),
		errors.Is(err, quote.ErrNothingSelected):
		return http.StatusBadRequest
	case errors.Is(err, quote.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, quote.ErrCorruptFile):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

package handlers

import (
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Items   int    `json:"items"`
	History bool   `json:"history"`
}

// Health reports liveness plus the size of the quote being edited.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Items:   h.Session.Snapshot().Len(),
		History: h.Session.HasHistory(),
	})
}

package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"eurocar/orcamentos/internal/app/session"
	"eurocar/orcamentos/internal/domain/quote"
)

type clientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Vehicle string `json:"vehicle"`
	Plate   string `json:"plate"`
}

type laborRequest struct {
	Text string `json:"text"`
}

// itemRequest carries the form fields as typed; parsing happens in the
// quote model.
type itemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type loadRequest struct {
	Path string `json:"path"`
}

func (h *Handlers) GetQuote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newQuoteView(h.Session.Snapshot()))
}

func (h *Handlers) ResetQuote(w http.ResponseWriter, r *http.Request) {
	h.Session.Reset()
	writeJSON(w, http.StatusOK, newQuoteView(h.Session.Snapshot()))
}

func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	h.Session.SetClient(quote.Client{Name: req.Name, Phone: req.Phone, Vehicle: req.Vehicle, Plate: req.Plate})
	writeJSON(w, http.StatusOK, newQuoteView(h.Session.Snapshot()))
}

// UpdateLabor never rejects the input: unparsable text zeroes the labor and
// the reason comes back as a warning.
func (h *Handlers) UpdateLabor(w http.ResponseWriter, r *http.Request) {
	var req laborRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err := h.Session.SetLabor(req.Text)
	v := newQuoteView(h.Session.Snapshot())
	if err != nil {
		v.Warning = err.Error()
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.Session.AddItem(req.Description, req.Quantity, req.UnitPrice); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newQuoteView(h.Session.Snapshot()))
}

func (h *Handlers) EditItem(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req itemRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.Session.EditItem(index, req.Description, req.Quantity, req.UnitPrice); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuoteView(h.Session.Snapshot()))
}

func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Session.RemoveItem(index); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuoteView(h.Session.Snapshot()))
}

func (h *Handlers) MoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req moveRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	dir, err := quote.ParseDirection(req.Direction)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	to, err := h.Session.MoveItem(index, dir)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v := newQuoteView(h.Session.Snapshot())
	v.Selected = &to
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.Session.Preview()))
}

// PDF streams the document for the current quote; nothing is written to disk.
func (h *Handlers) PDF(w http.ResponseWriter, r *http.Request) {
	data, err := h.Session.PDF()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	name := session.PDFFileName(h.Session.Snapshot().Client, time.Now())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	res, err := h.Session.Export(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) Load(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := decode(r, &req); err != nil || strings.TrimSpace(req.Path) == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	if err := h.Session.Load(filepath.Clean(req.Path)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuoteView(h.Session.Snapshot()))
}

type exportView struct {
	ID           int64     `json:"id"`
	Client       string    `json:"client"`
	Vehicle      string    `json:"vehicle"`
	Plate        string    `json:"plate"`
	Total        string    `json:"total"`
	PDFPath      string    `json:"pdf_path"`
	EditablePath string    `json:"editable_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *Handlers) ListExports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, ok, err := h.Session.History(r.Context(), limit)
	if !ok {
		http.Error(w, "export history not configured", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.Warn("history lookup failed", zap.Error(err))
		http.Error(w, "history lookup failed", http.StatusBadGateway)
		return
	}
	out := make([]exportView, 0, len(list))
	for _, e := range list {
		out = append(out, exportView{
			ID:           e.ID,
			Client:       e.Client,
			Vehicle:      e.Vehicle,
			Plate:        e.Plate,
			Total:        e.Grand.String(),
			PDFPath:      e.PDFPath,
			EditablePath: e.EditablePath,
			CreatedAt:    e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func indexParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, fmt.Errorf("%w: item index %q", quote.ErrValidation, chi.URLParam(r, "index"))
	}
	return n, nil
}

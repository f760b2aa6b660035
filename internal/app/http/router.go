package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"eurocar/orcamentos/internal/app/config"
	"eurocar/orcamentos/internal/app/http/handlers"
	"eurocar/orcamentos/internal/app/http/middleware"
)

func NewRouter(cfg config.Config, h *handlers.Handlers, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging(log))

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.InternalAuth(cfg.InternalToken))

		r.Route("/quote", func(r chi.Router) {
			r.Get("/", h.GetQuote)
			r.Post("/reset", h.ResetQuote)
			r.Put("/client", h.UpdateClient)
			r.Put("/labor", h.UpdateLabor)

			r.Post("/items", h.AddItem)
			r.Put("/items/{index}", h.EditItem)
			r.Delete("/items/{index}", h.RemoveItem)
			r.Post("/items/{index}/move", h.MoveItem)

			r.Get("/preview", h.Preview)
			r.Get("/pdf", h.PDF)
			r.Post("/export", h.Export)
			r.Post("/load", h.Load)
		})

		r.Get("/quotes", h.ListExports)
	})

	return r
}

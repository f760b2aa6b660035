package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"eurocar/orcamentos/internal/app/config"
	apphttp "eurocar/orcamentos/internal/app/http"
	"eurocar/orcamentos/internal/app/http/handlers"
	"eurocar/orcamentos/internal/app/session"
	"eurocar/orcamentos/internal/app/settings"
	"eurocar/orcamentos/internal/domain/quote/document"
	"eurocar/orcamentos/internal/domain/quote/editable"
	pdfgen "eurocar/orcamentos/internal/domain/quote/pdf/gofpdf"
	"eurocar/orcamentos/internal/infra/db/postgres"
)

// Components are the pieces shared by the server and the one-shot commands.
type Components struct {
	Settings  *settings.Store
	Generator *pdfgen.Generator
	Editable  *editable.Store
}

func Build(cfg config.Config, log *zap.Logger) (*Components, error) {
	st, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	renderer := document.NewRenderer(st.Issuer(cfg.LogoPath))
	return &Components{
		Settings:  st,
		Generator: pdfgen.New(renderer, log),
		Editable:  editable.NewStore(st, nil, log),
	}, nil
}

// Run serves the session API until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	c, err := Build(cfg, log)
	if err != nil {
		return err
	}

	deps := session.Deps{
		Generator: c.Generator,
		Editable:  c.Editable,
		Settings:  c.Settings,
		Log:       log,
	}
	if cfg.DatabaseURL != "" {
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer db.Close()
		archive := postgres.NewArchive(db)
		if err := archive.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Archive = archive
		log.Info("export history enabled")
	}

	s := session.New(deps)
	router := apphttp.NewRouter(cfg, handlers.New(s, log), log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("settings", c.Settings.Path()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

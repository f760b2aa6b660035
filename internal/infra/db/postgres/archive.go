package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"eurocar/orcamentos/internal/domain/quote"
)

const schema = `
CREATE TABLE IF NOT EXISTS quote_exports (
	id            BIGSERIAL PRIMARY KEY,
	client        TEXT        NOT NULL,
	vehicle       TEXT        NOT NULL,
	plate         TEXT        NOT NULL DEFAULT '',
	grand_total   NUMERIC(14,2) NOT NULL,
	pdf_path      TEXT        NOT NULL,
	editable_path TEXT        NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS quote_exports_created_at_idx ON quote_exports (created_at DESC);
`

// Archive stores one row per exported quote.
type Archive struct {
	db *DB
}

func NewArchive(db *DB) *Archive { return &Archive{db: db} }

func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create quote_exports: %w", err)
	}
	return nil
}

func (a *Archive) Record(ctx context.Context, e quote.Export) (int64, error) {
	var id int64
	err := a.db.Pool.QueryRow(ctx, `
		INSERT INTO quote_exports (client, vehicle, plate, grand_total, pdf_path, editable_path, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		RETURNING id`,
		e.Client, e.Vehicle, e.Plate, e.Grand.Fixed(), e.PDFPath, e.EditablePath, e.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert quote_exports: %w", err)
	}
	return id, nil
}

// List returns the newest exports first.
func (a *Archive) List(ctx context.Context, limit int) ([]quote.Export, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.Pool.Query(ctx, `
		SELECT id, client, vehicle, plate, grand_total::text, pdf_path, editable_path, created_at
		FROM quote_exports
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query quote_exports: %w", err)
	}
	defer rows.Close()

	var out []quote.Export
	for rows.Next() {
		var (
			e     quote.Export
			total string
		)
		if err := rows.Scan(&e.ID, &e.Client, &e.Vehicle, &e.Plate, &total, &e.PDFPath, &e.EditablePath, &e.CreatedAt); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("grand_total %q: %w", total, err)
		}
		e.Grand = quote.NewMoney(d)
		out = append(out, e)
	}
	return out, rows.Err()
}

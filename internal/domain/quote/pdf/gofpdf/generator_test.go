package gofpdf

import (
	"bytes"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"eurocar/orcamentos/internal/domain/quote"
	"eurocar/orcamentos/internal/domain/quote/document"
)

func sampleQuote(t *testing.T, n int) *quote.Quote {
	t.Helper()
	q := quote.New()
	q.Client = quote.Client{Name: "João", Vehicle: "Fusca", Plate: "XYZ9A87"}
	for i := 0; i < n; i++ {
		if err := q.Add(fmt.Sprintf("Peça %d", i+1), "1", "1.250,50"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	return q
}

func TestGenerator_Generate(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := document.NewRenderer(document.Issuer{Name: "EUROCAR", LogoPath: "does/not/exist.png"})
	g := New(r, zap.New(core))

	out, err := g.Generate(sampleQuote(t, 14))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected a PDF, got %q", out[:min(len(out), 16)])
	}
	if !bytes.Contains(out, []byte("/Count 2")) {
		t.Fatalf("expected a two page document")
	}

	entries := logs.FilterMessage("quote pdf: logo not found").All()
	if len(entries) != 1 {
		t.Fatalf("expected one missing-logo warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["path"] != "does/not/exist.png" {
		t.Fatalf("unexpected fields %v", entries[0].ContextMap())
	}
}

func TestGenerator_LayoutError(t *testing.T) {
	r := document.NewRenderer(document.Issuer{Name: "EUROCAR"})
	r.Layout.ColumnWidths[0] = 0
	if _, err := New(r, nil).Generate(sampleQuote(t, 1)); err == nil {
		t.Fatalf("expected a layout error")
	}
}

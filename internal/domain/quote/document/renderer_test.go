package document

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"eurocar/orcamentos/internal/domain/quote"
)

var fixedNow = time.Date(2026, time.October, 18, 14, 30, 5, 0, time.Local)

func testRenderer() *Renderer {
	r := NewRenderer(Issuer{
		Name:     "EUROCAR",
		TaxID:    "59.152.856/0001-25",
		Owner:    "Vitaliano Pereira Serpa",
		Address:  "Rua Juíz de Fora, 12 - Qd 98 - Jardim Guanabara",
		Contact:  "(62) 9 9415-9037",
		LogoPath: "assets/logo.png",
	})
	r.Now = func() time.Time { return fixedNow }
	return r
}

func quoteWithItems(t *testing.T, n int) *quote.Quote {
	t.Helper()
	q := quote.New()
	q.Client = quote.Client{Name: "Ana", Phone: "(62) 9999-0000", Vehicle: "Gol", Plate: "ABC1D23"}
	for i := 0; i < n; i++ {
		if err := q.Add(fmt.Sprintf("Peça %d", i+1), "2", "10,00"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := q.SetLabor("80,00"); err != nil {
		t.Fatalf("labor: %v", err)
	}
	return q
}

func render(t *testing.T, r *Renderer, q *quote.Quote) *Document {
	t.Helper()
	doc, err := r.Render(q)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return doc
}

func indexOf(texts []string, s string) int {
	for i, v := range texts {
		if v == s {
			return i
		}
	}
	return -1
}

func countOf(texts []string, s string) int {
	n := 0
	for _, v := range texts {
		if v == s {
			n++
		}
	}
	return n
}

func TestRender_SinglePage(t *testing.T) {
	doc := render(t, testRenderer(), quoteWithItems(t, 2))
	if doc.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", doc.PageCount())
	}
	texts := doc.Pages[0].Texts()
	for _, want := range []string{
		"EUROCAR", "CNPJ: 59.152.856/0001-25", "Contato: (62) 9 9415-9037",
		"Ana", "Gol", "ABC1D23",
		"ORÇAMENTO Nº: 143005181026", "Criado em: 18/10/2026",
		"Its", "Descrição", "Qtd", "Unitário", "Total",
		"1.", "Peça 1", "2", "R$ 10,00", "R$ 20,00",
		"TOTAL PEÇAS:", "R$ 40,00", "MÃO DE OBRA:", "R$ 80,00", "TOTAL GERAL:", "R$ 120,00",
		"Domingo, 18 de Outubro de 2026", "Página 1 de {nb}",
	} {
		if indexOf(texts, want) < 0 {
			t.Fatalf("missing %q in %v", want, texts)
		}
	}
	if got := doc.Resolve("Página 1 de {nb}"); got != "Página 1 de 1" {
		t.Fatalf("unexpected resolved footer %q", got)
	}
}

func TestRender_TotalsOrderAndBold(t *testing.T) {
	doc := render(t, testRenderer(), quoteWithItems(t, 1))
	ops := doc.Pages[0].Ops
	var seq []string
	for _, op := range ops {
		switch {
		case op.Kind == KindLine && op.Y >= 237:
			seq = append(seq, "rule")
		case op.Kind == KindText && strings.HasPrefix(op.Text, "TOTAL") || op.Text == "MÃO DE OBRA:":
			seq = append(seq, op.Text)
			if op.Text == "TOTAL GERAL:" && op.Font.Style != "B" {
				t.Fatalf("grand total must be bold")
			}
		case op.Kind == KindText && strings.HasPrefix(op.Text, "R$") && op.Y >= 237:
			if op.Align != "R" {
				t.Fatalf("totals amount %q must be right aligned", op.Text)
			}
		}
	}
	want := []string{"rule", "TOTAL PEÇAS:", "MÃO DE OBRA:", "rule", "TOTAL GERAL:"}
	if strings.Join(seq, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, seq)
	}
}

func TestRender_PaginationBoundary(t *testing.T) {
	r := testRenderer()

	t.Run("13 items fit on the first page", func(t *testing.T) {
		doc := render(t, r, quoteWithItems(t, 13))
		if doc.PageCount() != 1 {
			t.Fatalf("expected 1 page, got %d", doc.PageCount())
		}
	})

	t.Run("14th item starts a continuation page with the header row", func(t *testing.T) {
		doc := render(t, r, quoteWithItems(t, 14))
		if doc.PageCount() != 2 {
			t.Fatalf("expected 2 pages, got %d", doc.PageCount())
		}
		second := doc.Pages[1].Texts()
		if len(second) < 6 || second[0] != "Its" || second[1] != "Descrição" || second[5] != "14." {
			t.Fatalf("continuation page must start with the column header, got %v", second)
		}
		if indexOf(second, "EUROCAR") >= 0 || indexOf(second, "Cliente:") >= 0 {
			t.Fatalf("continuation page must use the condensed header, got %v", second)
		}
		if doc.Pages[1].Ops[0].Kind != KindImage || doc.Pages[1].Ops[0].W != 30 {
			t.Fatalf("continuation header must be the logo, got %+v", doc.Pages[1].Ops[0])
		}
		if indexOf(doc.Pages[0].Texts(), "TOTAL GERAL:") >= 0 {
			t.Fatalf("totals must follow the last row")
		}
		if indexOf(second, "TOTAL GERAL:") < 0 || indexOf(second, "Página 2 de {nb}") < 0 {
			t.Fatalf("missing totals or footer on last page: %v", second)
		}
	})

	t.Run("33 and 34 items cross the second page boundary", func(t *testing.T) {
		if n := render(t, r, quoteWithItems(t, 33)).PageCount(); n != 2 {
			t.Fatalf("expected 2 pages, got %d", n)
		}
		doc := render(t, r, quoteWithItems(t, 34))
		if doc.PageCount() != 3 {
			t.Fatalf("expected 3 pages, got %d", doc.PageCount())
		}
		for _, p := range doc.Pages {
			if countOf(p.Texts(), "Its") != 1 {
				t.Fatalf("page %d must carry exactly one header row", p.Number)
			}
		}
	})
}

func TestRender_RowsNeverPastReserve(t *testing.T) {
	r := testRenderer()
	doc := render(t, r, quoteWithItems(t, 80))
	limit := r.Layout.TableBottom - float64(r.Layout.ReserveRows)*r.Layout.RowHeight
	rows := 0
	for _, p := range doc.Pages {
		for _, op := range p.Ops {
			if op.Kind == KindText && strings.HasPrefix(op.Text, "Peça ") {
				rows++
				if op.Y > limit {
					t.Fatalf("page %d: row %q at y=%v past %v", p.Number, op.Text, op.Y, limit)
				}
			}
		}
	}
	if rows != 80 {
		t.Fatalf("expected 80 rows, got %d", rows)
	}
}

func TestRender_TotalsNeverSplit(t *testing.T) {
	r := testRenderer()
	r.Layout.ReserveRows = 0

	t.Run("table ends above the totals block", func(t *testing.T) {
		doc := render(t, r, quoteWithItems(t, 13))
		if doc.PageCount() != 1 {
			t.Fatalf("expected 1 page, got %d", doc.PageCount())
		}
	})

	t.Run("table ends inside the totals area", func(t *testing.T) {
		doc := render(t, r, quoteWithItems(t, 14))
		if doc.PageCount() != 2 {
			t.Fatalf("expected forced break, got %d pages", doc.PageCount())
		}
		second := doc.Pages[1].Texts()
		if indexOf(second, "Its") >= 0 {
			t.Fatalf("totals page must not repeat the table header: %v", second)
		}
		for _, want := range []string{"TOTAL PEÇAS:", "MÃO DE OBRA:", "TOTAL GERAL:"} {
			if indexOf(second, want) < 0 {
				t.Fatalf("missing %q on totals page", want)
			}
		}
	})
}

func TestRender_FooterOnEveryPage(t *testing.T) {
	doc := render(t, testRenderer(), quoteWithItems(t, 40))
	for _, p := range doc.Pages {
		texts := p.Texts()
		n := len(texts)
		if texts[n-2] != "Domingo, 18 de Outubro de 2026" {
			t.Fatalf("page %d: date must sit above the page number, got %v", p.Number, texts[n-2:])
		}
		want := fmt.Sprintf("Página %d de {nb}", p.Number)
		if texts[n-1] != want {
			t.Fatalf("page %d: expected %q, got %q", p.Number, want, texts[n-1])
		}
		if got := doc.Resolve(texts[n-1]); got != fmt.Sprintf("Página %d de %d", p.Number, doc.PageCount()) {
			t.Fatalf("unexpected resolved footer %q", got)
		}
	}
}

func TestRender_DescriptionNotTruncated(t *testing.T) {
	q := quoteWithItems(t, 0)
	long := strings.Repeat("Amortecedor dianteiro ", 4)
	if err := q.Add(long, "1", "1,00"); err != nil {
		t.Fatalf("add: %v", err)
	}
	doc := render(t, testRenderer(), q)
	if indexOf(doc.Pages[0].Texts(), strings.TrimSpace(long)) < 0 {
		t.Fatalf("description must be rendered in full")
	}
}

func TestRender_InvalidLayout(t *testing.T) {
	r := testRenderer()
	r.Layout.ColumnWidths[1] = 90
	if _, err := r.Render(quoteWithItems(t, 1)); !errors.Is(err, ErrLayout) {
		t.Fatalf("expected ErrLayout, got %v", err)
	}
}

func TestRender_NoLogo(t *testing.T) {
	r := testRenderer()
	r.Issuer.LogoPath = ""
	doc := render(t, r, quoteWithItems(t, 20))
	for _, p := range doc.Pages {
		for _, op := range p.Ops {
			if op.Kind == KindImage {
				t.Fatalf("unexpected image op on page %d", p.Number)
			}
		}
	}
}

func TestLongDate(t *testing.T) {
	cases := map[time.Time]string{
		time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC):   "Segunda-feira, 3 de Março de 2025",
		time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC):   "Sábado, 15 de Junho de 2024",
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC): "Quinta-feira, 1 de Janeiro de 2026",
	}
	for in, want := range cases {
		if got := LongDate(in); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

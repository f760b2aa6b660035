package gofpdf

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"eurocar/orcamentos/internal/domain/quote"
	"eurocar/orcamentos/internal/domain/quote/document"
)

type Generator struct {
	renderer *document.Renderer
	log      *zap.Logger
}

func New(r *document.Renderer, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{renderer: r, log: log}
}

func (g *Generator) Generate(q *quote.Quote) ([]byte, error) {
	doc, err := g.renderer.Render(q)
	if err != nil {
		return nil, err
	}
	return g.Paint(doc)
}

// Paint draws a laid-out document. The total page count is left to the PDF
// backend through the alias, matching the layout's forward reference.
func (g *Generator) Paint(doc *document.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages(document.AliasTotalPages)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	missing := map[string]bool{}
	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			switch op.Kind {
			case document.KindText:
				pdf.SetFont(op.Font.Family, op.Font.Style, op.Font.Size)
				pdf.SetXY(op.X, op.Y)
				border := op.Border
				if border == "" {
					border = "0"
				}
				pdf.CellFormat(op.W, op.H, tr(op.Text), border, 0, op.Align, false, 0, "")
			case document.KindLine:
				pdf.Line(op.X, op.Y, op.X2, op.Y2)
			case document.KindImage:
				if missing[op.Path] {
					continue
				}
				if _, err := os.Stat(op.Path); err != nil {
					missing[op.Path] = true
					g.log.Warn("quote pdf: logo not found", zap.String("path", op.Path))
					continue
				}
				pdf.ImageOptions(op.Path, op.X, op.Y, op.W, 0, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
			}
		}
		if err := pdf.Error(); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.log.Error("quote pdf: output failed", zap.Error(err))
		return nil, err
	}
	return buf.Bytes(), nil
}

package document

import (
	"errors"
	"fmt"
	"math"
	"time"

	"eurocar/orcamentos/internal/domain/quote"
)

var ErrLayout = errors.New("invalid document layout")

// Issuer identifies the business printed in the first-page header.
type Issuer struct {
	Name     string
	TaxID    string
	Owner    string
	Address  string
	Contact  string
	LogoPath string
}

// Layout holds the page geometry, in millimetres on an A4 portrait page.
type Layout struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64

	RowHeight float64
	// ReserveRows is how many rows must still fit above TableBottom before
	// another row is drawn on the current page.
	ReserveRows int
	TableBottom float64

	// The totals block is pinned TotalsFromBottom above the page bottom. When
	// the table ends below TotalsBreakAt the block moves to a new page.
	TotalsFromBottom float64
	TotalsBreakAt    float64

	FooterFromBottom float64

	// Columns: position, description, quantity, unit price, total.
	ColumnWidths [5]float64
}

func DefaultLayout() Layout {
	return Layout{
		PageWidth:        210,
		PageHeight:       297,
		Margin:           10,
		RowHeight:        10,
		ReserveRows:      3,
		TableBottom:      260,
		TotalsFromBottom: 60,
		TotalsBreakAt:    297 - 60,
		FooterFromBottom: 15,
		ColumnWidths:     [5]float64{10, 100, 15, 27, 38},
	}
}

func (l Layout) usableWidth() float64 { return l.PageWidth - 2*l.Margin }

func (l Layout) validate() error {
	var sum float64
	for _, w := range l.ColumnWidths {
		if w <= 0 {
			return fmt.Errorf("%w: column width %v", ErrLayout, w)
		}
		sum += w
	}
	if math.Abs(sum-l.usableWidth()) > 1e-9 {
		return fmt.Errorf("%w: columns sum to %v, usable width is %v", ErrLayout, sum, l.usableWidth())
	}
	if l.RowHeight <= 0 || l.ReserveRows < 0 {
		return fmt.Errorf("%w: row height %v, reserve rows %d", ErrLayout, l.RowHeight, l.ReserveRows)
	}
	return nil
}

var (
	fontTitle  = Font{Family: "Arial", Style: "B", Size: 17}
	fontSmall  = Font{Family: "Arial", Size: 10}
	fontSmallB = Font{Family: "Arial", Style: "B", Size: 10}
	fontBody   = Font{Family: "Arial", Size: 12}
	fontBodyB  = Font{Family: "Arial", Style: "B", Size: 12}
)

// Renderer lays a quote out into pages. It does no I/O.
type Renderer struct {
	Layout Layout
	Issuer Issuer
	Now    func() time.Time
}

func NewRenderer(issuer Issuer) *Renderer {
	return &Renderer{Layout: DefaultLayout(), Issuer: issuer, Now: time.Now}
}

func (r *Renderer) Render(q *quote.Quote) (*Document, error) {
	if err := r.Layout.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	b := &builder{r: r, l: r.Layout, now: now, doc: &Document{
		Title:  "Orçamento",
		Width:  r.Layout.PageWidth,
		Height: r.Layout.PageHeight,
	}}

	b.addPage()
	b.clientBlock(q.Client, now)
	b.tableHeader()

	b.pen.font = fontBody
	for i, it := range q.Items() {
		if b.l.TableBottom-b.pen.y < float64(b.l.ReserveRows)*b.l.RowHeight {
			b.addPage()
			b.tableHeader()
			b.pen.font = fontBody
		}
		b.itemRow(i, it)
	}

	if b.pen.y > b.l.TotalsBreakAt {
		b.addPage()
	}
	b.totals(q.Totals())
	b.closePage()
	return b.doc, nil
}

type builder struct {
	r    *Renderer
	l    Layout
	now  time.Time
	doc  *Document
	page *Page
	pen  pen
}

// pen follows the cell cursor model of the PDF backend: a cell advances the
// cursor horizontally, or to the next line when it ends the line.
type pen struct {
	x, y  float64
	left  float64
	right float64
	font  Font
	ops   *[]Op
}

func (p *pen) cell(w, h float64, text, border string, endLine bool, align string) {
	if w == 0 {
		w = p.right - p.x
	}
	*p.ops = append(*p.ops, Op{
		Kind: KindText, X: p.x, Y: p.y, W: w, H: h,
		Text: text, Align: align, Border: border, Font: p.font,
	})
	if endLine {
		p.x = p.left
		p.y += h
		return
	}
	p.x += w
}

func (p *pen) ln(h float64) {
	p.x = p.left
	p.y += h
}

func (p *pen) line(x1, y1, x2, y2 float64) {
	*p.ops = append(*p.ops, Op{Kind: KindLine, X: x1, Y: y1, X2: x2, Y2: y2})
}

func (p *pen) image(path string, x, y, w float64) {
	if path == "" {
		return
	}
	*p.ops = append(*p.ops, Op{Kind: KindImage, Path: path, X: x, Y: y, W: w})
}

func (b *builder) addPage() {
	if b.page != nil {
		b.closePage()
	}
	b.doc.Pages = append(b.doc.Pages, Page{Number: len(b.doc.Pages) + 1})
	b.page = &b.doc.Pages[len(b.doc.Pages)-1]
	b.pen = pen{
		x: b.l.Margin, y: b.l.Margin,
		left: b.l.Margin, right: b.l.PageWidth - b.l.Margin,
		ops: &b.page.Ops,
	}
	if b.page.Number == 1 {
		b.firstHeader()
	} else {
		b.continuationHeader()
	}
}

func (b *builder) closePage() {
	if b.page == nil {
		return
	}
	b.footer()
	b.page = nil
}

func (b *builder) firstHeader() {
	is := b.r.Issuer
	p := &b.pen
	p.image(is.LogoPath, 5, 20, 45)

	const textX = 51
	p.x, p.y = textX, b.l.Margin
	p.font = fontTitle
	p.cell(0, 10, is.Name, "", true, "L")
	p.font = fontSmall
	for _, line := range []string{"CNPJ: " + is.TaxID, is.Owner, is.Address, "Contato: " + is.Contact} {
		p.x = textX
		p.cell(0, 6, line, "", true, "L")
	}
	p.line(b.l.Margin, 48, b.l.PageWidth-b.l.Margin, 48)
	p.ln(5)
}

func (b *builder) continuationHeader() {
	b.pen.image(b.r.Issuer.LogoPath, b.l.Margin, b.l.Margin, 30)
	b.pen.ln(15)
}

func (b *builder) clientBlock(c quote.Client, now time.Time) {
	p := &b.pen
	right := b.l.PageWidth - b.l.Margin

	p.font = fontBodyB
	p.cell(20, 10, "Cliente:", "", false, "L")
	p.font = fontBody
	p.cell(60, 10, c.Name, "", false, "L")
	p.font = fontBodyB
	p.cell(70, 10, "Veículo:", "", false, "R")
	p.font = fontBody
	p.cell(0, 10, c.Vehicle, "", true, "C")

	p.font = fontBodyB
	p.cell(20, 10, "Contato:", "", false, "L")
	p.font = fontBody
	p.cell(60, 10, c.Phone, "", false, "L")
	p.font = fontBodyB
	p.cell(68, 10, "Placa:", "", false, "R")
	p.font = fontBody
	p.cell(0, 10, c.Plate, "", true, "C")

	p.line(b.l.Margin, p.y, right, p.y)
	p.ln(1)

	p.font = fontBodyB
	p.cell(100, 10, "ORÇAMENTO Nº: "+Number(now), "", false, "L")
	p.cell(0, 10, "Criado em: "+now.Format("02/01/2006"), "", true, "R")
	p.ln(1)

	p.line(b.l.Margin, p.y, right, p.y)
	p.ln(10)
}

func (b *builder) tableHeader() {
	w := b.l.ColumnWidths
	p := &b.pen
	p.font = fontBodyB
	p.cell(w[0], b.l.RowHeight, "Its", "B", false, "L")
	p.cell(w[1], b.l.RowHeight, "Descrição", "B", false, "L")
	p.cell(w[2], b.l.RowHeight, "Qtd", "B", false, "C")
	p.cell(w[3], b.l.RowHeight, "Unitário", "B", false, "C")
	p.cell(w[4], b.l.RowHeight, "Total", "B", true, "C")
}

func (b *builder) itemRow(i int, it quote.LineItem) {
	w := b.l.ColumnWidths
	p := &b.pen
	p.cell(w[0], b.l.RowHeight, fmt.Sprintf("%d.", i+1), "", false, "C")
	p.cell(w[1], b.l.RowHeight, it.Description, "", false, "L")
	p.cell(w[2], b.l.RowHeight, fmt.Sprintf("%d", it.Quantity), "", false, "C")
	p.cell(w[3], b.l.RowHeight, it.UnitPrice.String(), "", false, "C")
	p.cell(w[4], b.l.RowHeight, it.Total().String(), "", true, "C")
}

func (b *builder) totals(t quote.Totals) {
	p := &b.pen
	left, right := b.l.Margin, b.l.PageWidth-b.l.Margin
	p.x, p.y = left, b.l.PageHeight-b.l.TotalsFromBottom

	p.line(left, p.y, right, p.y)
	p.ln(5)
	p.font = fontSmall
	p.cell(150, 8, "TOTAL PEÇAS:", "", false, "L")
	p.cell(30, 8, t.Parts.String(), "", true, "R")
	p.cell(150, 8, "MÃO DE OBRA:", "", false, "L")
	p.cell(30, 8, t.Labor.String(), "", true, "R")
	p.line(left, p.y, right, p.y)
	p.ln(5)
	p.font = fontSmallB
	p.cell(150, 8, "TOTAL GERAL:", "", false, "L")
	p.cell(30, 8, t.Grand.String(), "", true, "R")
}

func (b *builder) footer() {
	p := &b.pen
	p.x, p.y = b.l.Margin, b.l.PageHeight-b.l.FooterFromBottom
	p.font = fontSmall
	p.cell(0, 5, LongDate(b.now), "", true, "R")
	p.cell(0, 5, fmt.Sprintf("Página %d de %s", b.page.Number, AliasTotalPages), "", true, "R")
}

// Number is the quote number printed on the document: HHMMSSddmmyy.
func Number(t time.Time) string { return t.Format("150405020106") }

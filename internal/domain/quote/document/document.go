package document

import (
	"strconv"
	"strings"
)

// AliasTotalPages is written into footers before the page count is known and
// resolved once the whole document has been laid out.
const AliasTotalPages = "{nb}"

type Kind int

const (
	KindText Kind = iota
	KindLine
	KindImage
)

type Font struct {
	Family string
	Style  string // "", "B"
	Size   float64
}

// Op is one draw instruction in page coordinates (millimetres, origin top-left).
type Op struct {
	Kind Kind

	X, Y float64
	W, H float64

	// KindLine end point.
	X2, Y2 float64

	// KindText.
	Text   string
	Align  string // "L", "C", "R"
	Border string // "", "B"
	Font   Font

	// KindImage.
	Path string
}

type Page struct {
	Number int
	Ops    []Op
}

// Texts returns the text of every cell on the page in drawing order.
func (p Page) Texts() []string {
	var out []string
	for _, op := range p.Ops {
		if op.Kind == KindText {
			out = append(out, op.Text)
		}
	}
	return out
}

type Document struct {
	Title  string
	Width  float64
	Height float64
	Pages  []Page
}

func (d *Document) PageCount() int { return len(d.Pages) }

// Resolve returns text with the total-pages alias replaced.
func (d *Document) Resolve(text string) string {
	return strings.ReplaceAll(text, AliasTotalPages, strconv.Itoa(d.PageCount()))
}


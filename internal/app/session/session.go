// Package session owns the quote being edited. One Session holds one quote
// and serializes every command against it.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"eurocar/orcamentos/internal/domain/quote"
	"eurocar/orcamentos/internal/domain/quote/editable"
	"eurocar/orcamentos/internal/domain/quote/pdf"
	"eurocar/orcamentos/internal/domain/quote/preview"
)

const (
	SectionPaths = "paths"
	KeyPDFDir    = "orcamentos_pdf"
)

//go:generate mockgen -source=session.go -destination=mocks/mock_session.go -package=mock_session

type Settings interface {
	Get(section, key string) string
}

// Editable saves and loads the re-loadable quote file. Without one, Export
// skips the file and Load fails.
type Editable interface {
	Save(q *quote.Quote) (string, error)
	Load(path string) (*quote.Quote, error)
}

// Archive keeps the export history. It is optional.
type Archive interface {
	Record(ctx context.Context, e quote.Export) (int64, error)
	List(ctx context.Context, limit int) ([]quote.Export, error)
}

type Deps struct {
	Generator pdf.Generator
	Editable  Editable
	Archive   Archive
	Settings  Settings
	FS        editable.FS
	Log       *zap.Logger
}

type Session struct {
	mu    sync.Mutex
	quote *quote.Quote

	gen      pdf.Generator
	editable Editable
	archive  Archive
	settings Settings
	fs       editable.FS
	log      *zap.Logger
	now      func() time.Time
}

// Result describes a finished export. Warnings list the secondary
// artifacts that could not be written.
type Result struct {
	PDFPath      string   `json:"pdf_path"`
	EditablePath string   `json:"editable_path,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

func New(d Deps) *Session {
	if d.FS == nil {
		d.FS = editable.OSFS{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Session{
		quote:    quote.New(),
		gen:      d.Generator,
		editable: d.Editable,
		archive:  d.Archive,
		settings: d.Settings,
		fs:       d.FS,
		log:      d.Log,
		now:      time.Now,
	}
}

// Snapshot returns a copy of the current quote.
func (s *Session) Snapshot() *quote.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.quote)
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quote = quote.New()
}

func (s *Session) SetClient(c quote.Client) quote.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quote.Client = c.Normalized()
	return s.quote.Client
}

// SetLabor applies text as the labor amount. Invalid text leaves labor at
// zero and the error is returned for display only.
func (s *Session) SetLabor(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.SetLabor(text)
}

func (s *Session) AddItem(description, quantity, price string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Add(description, quantity, price)
}

func (s *Session) EditItem(index int, description, quantity, price string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Edit(index, description, quantity, price)
}

func (s *Session) RemoveItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Remove(index)
}

// MoveItem returns the index the item ends up at.
func (s *Session) MoveItem(index int, dir quote.Direction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Move(index, dir)
}

func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return preview.Format(s.quote)
}

// PDF renders the current quote without writing anything to disk.
func (s *Session) PDF() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.Generate(s.quote)
}

// Export writes the document, then the editable file, then the history
// record. Only a document failure fails the export.
func (s *Session) Export(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.quote

	if err := q.ValidateForExport(); err != nil {
		return Result{}, err
	}
	data, err := s.gen.Generate(q)
	if err != nil {
		return Result{}, err
	}

	dir := s.settings.Get(SectionPaths, KeyPDFDir)
	if dir == "" {
		return Result{}, fmt.Errorf("%w: pdf directory not configured", quote.ErrIO)
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("%w: create %s: %v", quote.ErrIO, dir, err)
	}
	res := Result{PDFPath: filepath.Join(dir, PDFFileName(q.Client, s.now()))}
	if err := s.fs.WriteFile(res.PDFPath, data, 0o644); err != nil {
		s.log.Error("session: pdf write failed", zap.String("path", res.PDFPath), zap.Error(err))
		return Result{}, fmt.Errorf("%w: write %s: %v", quote.ErrIO, res.PDFPath, err)
	}

	if s.editable != nil {
		path, err := s.editable.Save(q)
		if err != nil {
			res.Warnings = append(res.Warnings, "arquivo editável não salvo: "+err.Error())
		}
		res.EditablePath = path
	}

	if s.archive != nil {
		_, err := s.archive.Record(ctx, quote.Export{
			Client:       q.Client.Name,
			Vehicle:      q.Client.Vehicle,
			Plate:        q.Client.Plate,
			Grand:        q.Totals().Grand,
			PDFPath:      res.PDFPath,
			EditablePath: res.EditablePath,
			CreatedAt:    s.now(),
		})
		if err != nil {
			s.log.Warn("session: archive failed", zap.String("pdf", res.PDFPath), zap.Error(err))
			res.Warnings = append(res.Warnings, "histórico não registrado: "+err.Error())
		}
	}

	s.log.Info("session: exported",
		zap.String("pdf", res.PDFPath),
		zap.String("editable", res.EditablePath),
		zap.Int("items", q.Len()),
		zap.String("total", q.Totals().Grand.Fixed()),
	)
	return res, nil
}

// Load replaces the current quote with the one stored at path. On error the
// current quote is kept.
func (s *Session) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editable == nil {
		return fmt.Errorf("%w: editable store not configured", quote.ErrIO)
	}
	q, err := s.editable.Load(path)
	if err != nil {
		return err
	}
	s.quote = q
	return nil
}

func (s *Session) HasHistory() bool { return s.archive != nil }

// History lists the most recent exports. ok is false when no archive is
// configured.
func (s *Session) History(ctx context.Context, limit int) (list []quote.Export, ok bool, err error) {
	if s.archive == nil {
		return nil, false, nil
	}
	list, err = s.archive.List(ctx, limit)
	return list, true, err
}

// PDFFileName is "Orçamento <client> <vehicle> <dd-mm-YYYY>.pdf" with the
// client and vehicle reduced to letters, digits, space, '_' and '-'.
func PDFFileName(c quote.Client, t time.Time) string {
	return fmt.Sprintf("Orçamento %s %s %s.pdf",
		fileNamePart(c.Name), fileNamePart(c.Vehicle), t.Format("02-01-2006"))
}

func fileNamePart(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			return r
		}
		return -1
	}, strings.TrimSpace(s))
}

func clone(q *quote.Quote) *quote.Quote {
	return quote.FromItems(q.Client, q.Labor, q.Items())
}

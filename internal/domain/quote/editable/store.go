// Package editable reads and writes the re-loadable quote file.
//
// The file is JSON. Money is stored as a plain number, so a value is only
// exact to the cent; loading re-quantizes every amount to two decimals before
// it takes part in any arithmetic.
package editable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eurocar/orcamentos/internal/domain/quote"
)

const (
	SectionPaths = "paths"
	KeyDir       = "orcamentos_editaveis"
)

// Settings is the read side of the settings provider.
type Settings interface {
	Get(section, key string) string
}

type record struct {
	Nome     string       `json:"nome"`
	Telefone string       `json:"telefone"`
	Veiculo  string       `json:"veiculo"`
	Placa    string       `json:"placa"`
	MaoObra  float64      `json:"mao_obra"`
	Itens    []itemRecord `json:"itens"`
}

type itemRecord struct {
	Descricao  string  `json:"descricao"`
	Quantidade int     `json:"quantidade"`
	Valor      float64 `json:"valor"`
}

// loose mirrors record with every field optional so that absent fields can be
// told apart from empty ones and each field and item decodes on its own.
type loose struct {
	Nome     json.RawMessage   `json:"nome"`
	Telefone json.RawMessage   `json:"telefone"`
	Veiculo  json.RawMessage   `json:"veiculo"`
	Placa    json.RawMessage   `json:"placa"`
	MaoObra  json.RawMessage   `json:"mao_obra"`
	Itens    []json.RawMessage `json:"itens"`
}

type looseItem struct {
	Descricao  string       `json:"descricao"`
	Quantidade *json.Number `json:"quantidade"`
	Valor      *json.Number `json:"valor"`
}

var illegalName = regexp.MustCompile(`[\\/:*?"<>|]`)

type Store struct {
	settings Settings
	fs       FS
	log      *zap.Logger
	now      func() time.Time
}

func NewStore(settings Settings, fsys FS, log *zap.Logger) *Store {
	if fsys == nil {
		fsys = OSFS{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{settings: settings, fs: fsys, log: log, now: time.Now}
}

// Save writes q into the configured editable directory and returns the file
// path. Failures are logged and returned; the quote is never modified.
func (s *Store) Save(q *quote.Quote) (string, error) {
	path, err := s.save(q)
	if err != nil {
		s.log.Error("editable: save failed", zap.String("client", q.Client.Name), zap.Error(err))
		return "", err
	}
	s.log.Info("editable: saved", zap.String("path", path), zap.Int("items", q.Len()))
	return path, nil
}

func (s *Store) save(q *quote.Quote) (string, error) {
	dir := s.settings.Get(SectionPaths, KeyDir)
	if dir == "" {
		return "", fmt.Errorf("%w: editable directory not configured", quote.ErrIO)
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", quote.ErrIO, dir, err)
	}
	data, err := Encode(q)
	if err != nil {
		return "", err
	}
	path := s.uniquePath(dir, q.Client.Name)
	if err := s.fs.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", quote.ErrIO, path, err)
	}
	return path, nil
}

func (s *Store) uniquePath(dir, client string) string {
	base := fmt.Sprintf("Orcamento_%s_%s", SanitizeFileName(strings.TrimSpace(client)), s.now().Format("20060102_150405"))
	path := filepath.Join(dir, base+".json")
	if _, err := s.fs.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return path
	}
	return filepath.Join(dir, base+"_"+uuid.NewString()[:8]+".json")
}

// Load reads a quote file. Fields and items that do not decode are skipped.
func (s *Store) Load(path string) (*quote.Quote, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", quote.ErrIO, path, err)
	}
	q, skipped, err := Decode(data)
	if err != nil {
		return nil, err
	}
	for _, e := range skipped {
		s.log.Warn("editable: value skipped", zap.String("path", path), zap.Error(e))
	}
	return q, nil
}

// SanitizeFileName drops characters that are not allowed in file names.
func SanitizeFileName(name string) string {
	return illegalName.ReplaceAllString(name, "")
}

func Encode(q *quote.Quote) ([]byte, error) {
	rec := record{
		Nome:     q.Client.Name,
		Telefone: q.Client.Phone,
		Veiculo:  q.Client.Vehicle,
		Placa:    q.Client.Plate,
		MaoObra:  q.Labor.Float64(),
		Itens:    []itemRecord{},
	}
	for _, it := range q.Items() {
		rec.Itens = append(rec.Itens, itemRecord{
			Descricao:  it.Description,
			Quantidade: it.Quantity,
			Valor:      it.UnitPrice.Float64(),
		})
	}
	return json.MarshalIndent(rec, "", "    ")
}

// Decode parses a quote file. It fails only when the top-level object cannot
// be read; per-field and per-item problems are returned in skipped.
func Decode(data []byte) (q *quote.Quote, skipped []error, err error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil, fmt.Errorf("%w: no quote object", quote.ErrCorruptFile)
	}
	var l loose
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", quote.ErrCorruptFile, err)
	}

	text := func(field string, raw json.RawMessage) string {
		v, err := decodeText(raw)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", field, err))
		}
		return v
	}
	client := quote.Client{
		Name:    text("nome", l.Nome),
		Phone:   text("telefone", l.Telefone),
		Vehicle: text("veiculo", l.Veiculo),
		Plate:   text("placa", l.Placa),
	}
	labor, err := decodeLabor(l.MaoObra)
	if err != nil {
		skipped = append(skipped, fmt.Errorf("mao_obra: %w", err))
	}

	var items []quote.LineItem
	for i, raw := range l.Itens {
		it, err := decodeItem(raw)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		items = append(items, it)
	}
	return quote.FromItems(client, labor, items), skipped, nil
}

func decodeItem(raw json.RawMessage) (quote.LineItem, error) {
	var li looseItem
	if err := json.Unmarshal(raw, &li); err != nil {
		return quote.LineItem{}, fmt.Errorf("%w: %v", quote.ErrCorruptFile, err)
	}
	desc := strings.TrimSpace(li.Descricao)
	if desc == "" {
		return quote.LineItem{}, fmt.Errorf("%w: empty description", quote.ErrValidation)
	}
	qty := 1
	if li.Quantidade != nil {
		n, err := li.Quantidade.Int64()
		if err != nil || n < 1 {
			return quote.LineItem{}, fmt.Errorf("%w: quantity %q", quote.ErrValidation, li.Quantidade.String())
		}
		qty = int(n)
	}
	price := quote.Zero
	if li.Valor != nil {
		var err error
		if price, err = numberToMoney(*li.Valor); err != nil {
			return quote.LineItem{}, err
		}
	}
	return quote.LineItem{Description: desc, Quantity: qty, UnitPrice: price}, nil
}

func decodeLabor(raw json.RawMessage) (quote.Money, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return quote.Zero, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return quote.Zero, fmt.Errorf("%w: %s", quote.ErrInvalidAmount, raw)
	}
	return numberToMoney(n)
}

func numberToMoney(n json.Number) (quote.Money, error) {
	f, err := n.Float64()
	if err != nil {
		return quote.Zero, fmt.Errorf("%w: %q", quote.ErrInvalidAmount, n.String())
	}
	return quote.MoneyFromFloat(f)
}

// decodeText reads a client field. Absent, null and wrong-typed values all
// become NotInformed; only the last is reported.
func decodeText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return quote.NotInformed, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return quote.NotInformed, fmt.Errorf("%w: %s is not text", quote.ErrValidation, raw)
	}
	return s, nil
}

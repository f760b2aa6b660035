package editable

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"eurocar/orcamentos/internal/domain/quote"
)

type mapSettings map[string]string

func (m mapSettings) Get(section, key string) string { return m[section+"."+key] }

type failingFS struct {
	OSFS
	mkdirErr error
	writeErr error
}

func (f failingFS) MkdirAll(path string, perm fs.FileMode) error {
	if f.mkdirErr != nil {
		return f.mkdirErr
	}
	return f.OSFS.MkdirAll(path, perm)
}

func (f failingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.OSFS.WriteFile(name, data, perm)
}

func newTestStore(t *testing.T, dir string, fsys FS, log *zap.Logger) *Store {
	t.Helper()
	s := NewStore(mapSettings{"paths.orcamentos_editaveis": dir}, fsys, log)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 9, 5, 7, 0, time.UTC) }
	return s
}

func sampleQuote(t *testing.T) *quote.Quote {
	t.Helper()
	q := quote.New()
	q.Client = quote.Client{Name: "Ana: Souza/Filha", Phone: "(62) 9999-0000", Vehicle: "Gol", Plate: "ABC1D23"}
	for _, it := range [][3]string{{"Filtro", "2", "45,00"}, {"Vela", "4", "12,50"}} {
		if err := q.Add(it[0], it[1], it[2]); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := q.SetLabor("80,00"); err != nil {
		t.Fatalf("labor: %v", err)
	}
	return q
}

func TestStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "editaveis")
	s := newTestStore(t, dir, nil, nil)
	q := sampleQuote(t)

	path, err := s.Save(q)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "Orcamento_Ana SouzaFilha_20261018_090507.json" {
		t.Fatalf("unexpected file name %q", filepath.Base(path))
	}

	got, err := s.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Client != q.Client {
		t.Fatalf("client mismatch: %+v vs %+v", got.Client, q.Client)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", got.Len())
	}
	for i, want := range q.Items() {
		it, _ := got.Item(i)
		if it.Description != want.Description || it.Quantity != want.Quantity || !it.UnitPrice.Equal(want.UnitPrice.Rounded()) {
			t.Fatalf("item %d mismatch: %+v vs %+v", i, it, want)
		}
	}
	tot := got.Totals()
	if tot.Parts.String() != "R$ 140,00" || tot.Grand.String() != "R$ 220,00" {
		t.Fatalf("unexpected totals %s / %s", tot.Parts, tot.Grand)
	}
}

func TestStore_RoundTripToThePenny(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir, nil, nil)
	q := quote.New()
	q.Client = quote.Client{Name: "Bia", Vehicle: "Uno"}
	for _, p := range []string{"0,10", "0,20", "19,99", "1.234.567,89", "0,125"} {
		if err := q.Add("x", "3", p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	path, err := s.Save(q)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i, want := range q.Items() {
		it, _ := got.Item(i)
		if it.UnitPrice.String() != want.UnitPrice.String() {
			t.Fatalf("item %d: expected %s, got %s", i, want.UnitPrice, it.UnitPrice)
		}
		if !it.UnitPrice.Equal(it.UnitPrice.Rounded()) {
			t.Fatalf("item %d not re-quantized: %s", i, it.UnitPrice.Decimal())
		}
	}
}

func TestStore_UniqueNamePerInvocation(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir, nil, nil)
	q := sampleQuote(t)
	first, err := s.Save(q)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := s.Save(q)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct paths, got %q twice", first)
	}
	if !strings.HasPrefix(filepath.Base(second), "Orcamento_Ana SouzaFilha_20261018_090507_") {
		t.Fatalf("unexpected collision name %q", second)
	}
}

func TestStore_SaveFailureIsLoggedNotFatal(t *testing.T) {
	cases := map[string]FS{
		"mkdir": failingFS{mkdirErr: errors.New("permission denied")},
		"write": failingFS{writeErr: errors.New("disk full")},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			s := newTestStore(t, t.TempDir(), fsys, zap.New(core))
			q := sampleQuote(t)
			before := q.Items()

			path, err := s.Save(q)
			if path != "" || !errors.Is(err, quote.ErrIO) {
				t.Fatalf("expected ErrIO and no path, got %q %v", path, err)
			}
			if logs.FilterMessage("editable: save failed").Len() != 1 {
				t.Fatalf("expected the failure to be logged")
			}
			if q.Len() != len(before) {
				t.Fatalf("quote must be unchanged")
			}
		})
	}

	t.Run("no directory configured", func(t *testing.T) {
		s := NewStore(mapSettings{}, nil, nil)
		if _, err := s.Save(sampleQuote(t)); !errors.Is(err, quote.ErrIO) {
			t.Fatalf("expected ErrIO, got %v", err)
		}
	})
}

func TestStore_LoadSkipsBadItems(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q.json")
	data := `{
    "nome": "Ana",
    "telefone": "",
    "veiculo": "Gol",
    "placa": "ABC1D23",
    "mao_obra": 80.0,
    "itens": [
        {"descricao": "Filtro", "quantidade": 2, "valor": 45.0},
        {"descricao": "Quebrado", "quantidade": "duas", "valor": 10},
        {"descricao": "Meio", "quantidade": 1.5, "valor": 10},
        {"descricao": "", "quantidade": 1, "valor": 10},
        {"descricao": "Vela", "quantidade": 4, "valor": 12.5},
        {"descricao": "Sem quantidade", "valor": 1.1}
    ]
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zapcore.WarnLevel)
	s := newTestStore(t, dir, nil, zap.New(core))

	q, err := s.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var names []string
	for _, it := range q.Items() {
		names = append(names, it.Description)
	}
	if strings.Join(names, ",") != "Filtro,Vela,Sem quantidade" {
		t.Fatalf("unexpected items %v", names)
	}
	if it, _ := q.Item(2); it.Quantity != 1 {
		t.Fatalf("missing quantity must default to 1, got %d", it.Quantity)
	}
	if logs.Len() != 3 {
		t.Fatalf("expected 3 skip warnings, got %d", logs.Len())
	}
	if q.Client.Phone != "" {
		t.Fatalf("present empty field must stay empty, got %q", q.Client.Phone)
	}
}

func TestDecode_MissingFieldsUseDefaults(t *testing.T) {
	q, skipped, err := Decode([]byte(`{"itens": [{"descricao": "Óleo"}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped %v", skipped)
	}
	if q.Client.Name != quote.NotInformed || q.Client.Vehicle != quote.NotInformed {
		t.Fatalf("expected defaults, got %+v", q.Client)
	}
	if !q.Labor.IsZero() {
		t.Fatalf("expected zero labor")
	}
	it, _ := q.Item(0)
	if it.Quantity != 1 || !it.UnitPrice.IsZero() {
		t.Fatalf("unexpected defaults %+v", it)
	}
}

func TestDecode_BadLaborDegradesToZero(t *testing.T) {
	q, skipped, err := Decode([]byte(`{"nome": "Ana", "mao_obra": "muito", "itens": []}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !q.Labor.IsZero() || len(skipped) != 1 {
		t.Fatalf("expected zero labor and one note, got %s %v", q.Labor.Decimal(), skipped)
	}
}

func TestDecode_WrongTypedClientFieldDefaults(t *testing.T) {
	q, skipped, err := Decode([]byte(`{"nome": "Ana", "placa": 123, "veiculo": ["Gol"], "telefone": null, "itens": [{"descricao": "Óleo", "valor": 30}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Client.Name != "Ana" || q.Client.Plate != quote.NotInformed || q.Client.Vehicle != quote.NotInformed || q.Client.Phone != quote.NotInformed {
		t.Fatalf("unexpected client %+v", q.Client)
	}
	if len(skipped) != 2 || !errors.Is(skipped[0], quote.ErrValidation) {
		t.Fatalf("expected two notes, got %v", skipped)
	}
	if q.Len() != 1 {
		t.Fatalf("items must survive a bad client field, got %d", q.Len())
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir, nil, nil)

	if _, err := s.Load(filepath.Join(dir, "missing.json")); !errors.Is(err, quote.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	for name, body := range map[string]string{
		"garbage": "not json",
		"array":   `[1, 2]`,
		"null":    "null",
		"items":   `{"itens": 3}`,
	} {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Load(path); !errors.Is(err, quote.ErrCorruptFile) {
			t.Fatalf("%s: expected ErrCorruptFile, got %v", name, err)
		}
	}
}

func TestEncode_Format(t *testing.T) {
	data, err := Encode(sampleQuote(t))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"nome": "Ana: Souza/Filha"`, `"mao_obra": 80`, `"quantidade": 2`, `"valor": 12.5`} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %s in\n%s", want, s)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(`a\b/c:d*e?f"g<h>i|j`); got != "abcdefghij" {
		t.Fatalf("unexpected %q", got)
	}
}

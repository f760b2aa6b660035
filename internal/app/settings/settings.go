// Package settings keeps the user-editable settings of the quote tool in a
// YAML file: where exported documents go and who the issuing business is.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"eurocar/orcamentos/internal/domain/quote/document"
)

const (
	SectionPaths  = "paths"
	SectionIssuer = "issuer"

	KeyPDFDir      = "orcamentos_pdf"
	KeyEditableDir = "orcamentos_editaveis"

	KeyName    = "name"
	KeyTaxID   = "tax_id"
	KeyOwner   = "owner"
	KeyAddress = "address"
	KeyContact = "contact"
)

type Sections map[string]map[string]string

// Defaults returns a fresh copy of the built-in settings.
func Defaults() Sections {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Sections{
		SectionPaths: {
			KeyPDFDir:      home,
			KeyEditableDir: home,
		},
		SectionIssuer: {
			KeyName:    "EUROCAR",
			KeyTaxID:   "59.152.856/0001-25",
			KeyOwner:   "Vitaliano Pereira Serpa",
			KeyAddress: "Rua Juíz de Fora, 12 - Qd 98 - Jardim Guanabara",
			KeyContact: "(62) 9 9415-9037",
		},
	}
}

// DefaultPath is settings.yaml under the per-user configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "Eurocar", "settings.yaml"), nil
}

// Store is safe for concurrent use. Every change is written to disk before
// the call returns.
type Store struct {
	mu       sync.RWMutex
	path     string
	data     Sections
	defaults Sections
}

// Load reads path, fills in missing keys from Defaults and makes sure the
// configured directories exist. A missing file is created.
func Load(path string) (*Store, error) {
	return load(path, Defaults())
}

func load(path string, defaults Sections) (*Store, error) {
	s := &Store{path: path, data: Sections{}, defaults: defaults}

	raw, err := os.ReadFile(path)
	missing := errors.Is(err, fs.ErrNotExist)
	switch {
	case missing:
	case err != nil:
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
		if s.data == nil {
			s.data = Sections{}
		}
	}

	if merge(s.data, defaults) || missing {
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	if err := s.createDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

// merge adds every default key missing from dst and reports whether
// anything was added.
func merge(dst, defaults Sections) bool {
	changed := false
	for section, values := range defaults {
		if dst[section] == nil {
			dst[section] = map[string]string{}
		}
		for k, v := range values {
			if _, ok := dst[section][k]; !ok {
				dst[section][k] = v
				changed = true
			}
		}
	}
	return changed
}

func (s *Store) Path() string { return s.path }

func (s *Store) Get(section, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[section][key]
}

// Section returns a copy of one section.
func (s *Store) Section(section string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data[section]))
	for k, v := range s.data[section] {
		out[k] = v
	}
	return out
}

// Keys lists "section.key" names in a stable order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for section, values := range s.data {
		for k := range values {
			keys = append(keys, section+"."+k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) Set(section, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[section] == nil {
		s.data[section] = map[string]string{}
	}
	s.data[section][key] = value
	if err := s.save(); err != nil {
		return err
	}
	if section == SectionPaths {
		return s.createDirs()
	}
	return nil
}

// UpdateSection replaces a whole section.
func (s *Store) UpdateSection(section string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]string, len(values))
	for k, v := range values {
		next[k] = v
	}
	s.data[section] = next
	if err := s.save(); err != nil {
		return err
	}
	if section == SectionPaths {
		return s.createDirs()
	}
	return nil
}

// Reset restores the defaults and discards everything else.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = Sections{}
	merge(s.data, s.defaults)
	if err := s.save(); err != nil {
		return err
	}
	return s.createDirs()
}

// Issuer builds the document header identity from the issuer section.
func (s *Store) Issuer(logoPath string) document.Issuer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	is := s.data[SectionIssuer]
	return document.Issuer{
		Name:     is[KeyName],
		TaxID:    is[KeyTaxID],
		Owner:    is[KeyOwner],
		Address:  is[KeyAddress],
		Contact:  is[KeyContact],
		LogoPath: logoPath,
	}
}

func (s *Store) save() error {
	data, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) createDirs() error {
	for _, dir := range s.data[SectionPaths] {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

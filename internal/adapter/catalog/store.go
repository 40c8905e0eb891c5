package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sniff/internal/domain"
)

// DefaultPath is where the catalog lives unless configured otherwise.
var DefaultPath = filepath.Join("config", "llm_catalog.json")

// Store reads and writes the catalog as a JSON document at a fixed path.
// Saves go through a temp file in the same directory followed by a rename,
// so readers never observe a half-written catalog.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *Store) Load() (domain.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	var doc catalogDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to parse catalog %s: %w", s.path, err)
	}
	return catalogFromDoc(doc)
}

func (s *Store) Save(c domain.Catalog) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	data, err := json.MarshalIndent(catalogToDoc(c), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "llm_catalog-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp catalog file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}

// EnsureExists loads the catalog, writing seed (or the built-in default)
// first if no file exists yet.
func (s *Store) EnsureExists(seed *domain.Catalog) (domain.Catalog, error) {
	if s.Exists() {
		return s.Load()
	}
	c := DefaultCatalog()
	if seed != nil {
		c = *seed
	}
	if err := s.Save(c); err != nil {
		return domain.Catalog{}, err
	}
	return c, nil
}

// DefaultCatalog is the seed for fresh installations: no smells yet and a
// single local Ollama provider.
func DefaultCatalog() domain.Catalog {
	return domain.Catalog{
		SchemaVersion: 1,
		Providers: []domain.ProviderDefinition{
			{
				ProviderID:  "local-ollama",
				Kind:        domain.ProviderLocal,
				DisplayName: "Ollama (local)",
				Local:       &domain.LocalConfig{ModelName: "qwen2.5-coder:14b"},
			},
		},
	}
}

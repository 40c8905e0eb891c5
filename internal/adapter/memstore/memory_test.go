package memstore

import (
	"testing"

	"sniff/internal/domain"
)

func TestMemoryStore_LoadBeforeSave(t *testing.T) {
	if _, err := NewMemoryStore().Load(); err == nil {
		t.Error("expected error before first save, got nil")
	}
}

func TestMemoryStore_SaveLoad(t *testing.T) {
	s := NewMemoryStore()
	in := domain.Catalog{
		SchemaVersion: 1,
		Smells:        []domain.SmellDefinition{{SmellID: "long-method", DisplayName: "Long Method"}},
	}

	if err := s.Save(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Smells) != 1 || out.Smells[0].SmellID != "long-method" {
		t.Errorf("catalog did not round-trip: %+v", out.Smells)
	}

	// Loads hand out copies; mutating one must not leak back.
	out.Smells[0].DisplayName = "changed"
	again, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if again.Smells[0].DisplayName != "Long Method" {
		t.Errorf("expected stored catalog isolated from callers, got %q", again.Smells[0].DisplayName)
	}
}

func TestMemoryStore_EnsureExists(t *testing.T) {
	s := NewMemoryStore()

	c, err := s.EnsureExists(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.SchemaVersion != 1 {
		t.Errorf("expected schema version 1, got %d", c.SchemaVersion)
	}
	if len(c.Smells) != 0 || len(c.Providers) != 0 {
		t.Errorf("expected empty catalog, got %+v", c)
	}

	c.Smells = append(c.Smells, domain.SmellDefinition{SmellID: "x"})
	if err := s.Save(c); err != nil {
		t.Fatal(err)
	}
	again, err := s.EnsureExists(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Smells) != 1 {
		t.Errorf("expected existing catalog returned, got %d smells", len(again.Smells))
	}
}

func TestMemoryStore_EnsureExists_Seed(t *testing.T) {
	seed := domain.Catalog{SchemaVersion: 1, Smells: []domain.SmellDefinition{{SmellID: "seeded"}}}
	c, err := NewMemoryStore().EnsureExists(&seed)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Smells) != 1 || c.Smells[0].SmellID != "seeded" {
		t.Errorf("expected seeded catalog, got %+v", c.Smells)
	}
}

func TestNewSeededStore(t *testing.T) {
	original := domain.Catalog{
		SchemaVersion: 1,
		Providers: []domain.ProviderDefinition{
			{ProviderID: "p", Kind: domain.ProviderLocal, Local: &domain.LocalConfig{ModelName: "m"}},
		},
	}
	s := NewSeededStore(original)

	// The store keeps its own copy.
	original.Providers[0].Local.ModelName = "mutated"

	c, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Providers[0].Local.ModelName != "m" {
		t.Errorf("expected seeded copy isolated, got %q", c.Providers[0].Local.ModelName)
	}
}

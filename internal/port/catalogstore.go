package port

import "sniff/internal/domain"

// CatalogStore persists the smell and provider catalog. Implementations
// must make Save atomic with respect to concurrent readers of the same
// path.
type CatalogStore interface {
	Load() (domain.Catalog, error)

	Save(catalog domain.Catalog) error

	// EnsureExists returns the stored catalog, creating it from seed (or
	// the built-in default when seed is nil) if nothing is stored yet.
	EnsureExists(seed *domain.Catalog) (domain.Catalog, error)
}

package provider

import (
	"fmt"
	"strings"

	"sniff/internal/domain"
	"sniff/internal/port"
)

// FromDefinition constructs the concrete provider a catalog definition
// describes.
func FromDefinition(def domain.ProviderDefinition) (port.Provider, error) {
	switch def.Kind {
	case domain.ProviderLocal:
		cfg := domain.LocalConfig{}
		if def.Local != nil {
			cfg = *def.Local
		}
		return NewLocal(cfg), nil
	case domain.ProviderAPI:
		if def.API == nil || strings.TrimSpace(def.API.BaseURL) == "" {
			return nil, fmt.Errorf("provider %q: base_url is required for api providers", def.ProviderID)
		}
		return NewAPI(*def.API), nil
	default:
		return nil, fmt.Errorf("provider %q: unsupported kind %q", def.ProviderID, def.Kind)
	}
}

package catalog

import (
	"fmt"

	"sniff/internal/domain"
)

// Wire documents. The provider config travels as an open JSON object for
// compatibility with hand-edited files; decoding narrows it to the typed
// variant for the declared kind and ignores unknown keys.

type catalogDoc struct {
	SchemaVersion int           `json:"schema_version"`
	Smells        []smellDoc    `json:"smells"`
	Providers     []providerDoc `json:"providers"`
}

type smellDoc struct {
	SmellID       string  `json:"smell_id"`
	DisplayName   *string `json:"display_name"`
	Description   string  `json:"description"`
	DefaultPrompt string  `json:"default_prompt"`
	DraftPrompt   string  `json:"draft_prompt"`
	CreatedByUser bool    `json:"created_by_user"`
	Enabled       *bool   `json:"enabled"`
}

type providerDoc struct {
	ProviderID  string         `json:"provider_id"`
	Kind        string         `json:"kind"`
	DisplayName *string        `json:"display_name"`
	Config      map[string]any `json:"config"`
}

func catalogFromDoc(doc catalogDoc) (domain.Catalog, error) {
	out := domain.Catalog{SchemaVersion: doc.SchemaVersion}
	if out.SchemaVersion == 0 {
		out.SchemaVersion = 1
	}
	for _, sd := range doc.Smells {
		smell, err := smellFromDoc(sd)
		if err != nil {
			return domain.Catalog{}, err
		}
		out.Smells = append(out.Smells, smell)
	}
	for _, pd := range doc.Providers {
		provider, err := providerFromDoc(pd)
		if err != nil {
			return domain.Catalog{}, err
		}
		out.Providers = append(out.Providers, provider)
	}
	return out, nil
}

func smellFromDoc(d smellDoc) (domain.SmellDefinition, error) {
	if d.SmellID == "" {
		return domain.SmellDefinition{}, fmt.Errorf("smell entry is missing smell_id")
	}
	display := d.SmellID
	if d.DisplayName != nil {
		display = *d.DisplayName
	}
	// Documents written before the enabled flag existed mean "enabled".
	enabled := true
	if d.Enabled != nil {
		enabled = *d.Enabled
	}
	return domain.SmellDefinition{
		SmellID:       d.SmellID,
		DisplayName:   display,
		Description:   d.Description,
		DefaultPrompt: d.DefaultPrompt,
		DraftPrompt:   d.DraftPrompt,
		CreatedByUser: d.CreatedByUser,
		Enabled:       enabled,
	}, nil
}

func providerFromDoc(d providerDoc) (domain.ProviderDefinition, error) {
	if d.ProviderID == "" {
		return domain.ProviderDefinition{}, fmt.Errorf("provider entry is missing provider_id")
	}
	kind, err := domain.ParseProviderKind(d.Kind)
	if err != nil {
		return domain.ProviderDefinition{}, fmt.Errorf("provider %q: %w", d.ProviderID, err)
	}
	display := d.ProviderID
	if d.DisplayName != nil {
		display = *d.DisplayName
	}
	def := domain.ProviderDefinition{
		ProviderID:  d.ProviderID,
		Kind:        kind,
		DisplayName: display,
	}
	switch kind {
	case domain.ProviderLocal:
		local := &domain.LocalConfig{
			ModelName:      stringKey(d.Config, "model_name"),
			Host:           stringKey(d.Config, "host"),
			ResponseFormat: stringKey(d.Config, "format"),
		}
		if local.Host == "" {
			local.Host = stringKey(d.Config, "base_url")
		}
		if local.ResponseFormat == "" {
			local.ResponseFormat = stringKey(d.Config, "response_format")
		}
		if opts, ok := d.Config["options"].(map[string]any); ok {
			local.Options = opts
		}
		def.Local = local
	case domain.ProviderAPI:
		api := &domain.APIConfig{BaseURL: stringKey(d.Config, "base_url")}
		if t, ok := d.Config["timeout_s"].(float64); ok {
			api.TimeoutS = t
		}
		def.API = api
	}
	return def, nil
}

func stringKey(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func catalogToDoc(c domain.Catalog) catalogDoc {
	doc := catalogDoc{
		SchemaVersion: c.SchemaVersion,
		Smells:        make([]smellDoc, 0, len(c.Smells)),
		Providers:     make([]providerDoc, 0, len(c.Providers)),
	}
	for _, s := range c.Smells {
		doc.Smells = append(doc.Smells, smellToDoc(s))
	}
	for _, p := range c.Providers {
		doc.Providers = append(doc.Providers, providerToDoc(p))
	}
	return doc
}

func smellToDoc(s domain.SmellDefinition) smellDoc {
	display := s.DisplayName
	enabled := s.Enabled
	return smellDoc{
		SmellID:       s.SmellID,
		DisplayName:   &display,
		Description:   s.Description,
		DefaultPrompt: s.DefaultPrompt,
		DraftPrompt:   s.DraftPrompt,
		CreatedByUser: s.CreatedByUser,
		Enabled:       &enabled,
	}
}

func providerToDoc(p domain.ProviderDefinition) providerDoc {
	cfg := map[string]any{}
	switch p.Kind {
	case domain.ProviderLocal:
		if p.Local != nil {
			if p.Local.ModelName != "" {
				cfg["model_name"] = p.Local.ModelName
			}
			if p.Local.Host != "" {
				cfg["host"] = p.Local.Host
			}
			if p.Local.Options != nil {
				cfg["options"] = p.Local.Options
			}
			if p.Local.ResponseFormat != "" {
				cfg["format"] = p.Local.ResponseFormat
			}
		}
	case domain.ProviderAPI:
		if p.API != nil {
			if p.API.BaseURL != "" {
				cfg["base_url"] = p.API.BaseURL
			}
			if p.API.TimeoutS != 0 {
				cfg["timeout_s"] = p.API.TimeoutS
			}
		}
	}
	display := p.DisplayName
	return providerDoc{
		ProviderID:  p.ProviderID,
		Kind:        p.Kind.String(),
		DisplayName: &display,
		Config:      cfg,
	}
}

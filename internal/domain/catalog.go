package domain

import (
	"fmt"
	"strings"
)

// ProviderKind tags which backend family a provider definition configures.
// The set is closed; the persistence layer rejects anything else.
type ProviderKind int

const (
	ProviderLocal ProviderKind = iota
	ProviderAPI
)

func (k ProviderKind) String() string {
	switch k {
	case ProviderLocal:
		return "local"
	case ProviderAPI:
		return "api"
	default:
		return fmt.Sprintf("ProviderKind(%d)", int(k))
	}
}

// ParseProviderKind maps the wire strings "local" and "api" to kinds.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch s {
	case "local":
		return ProviderLocal, nil
	case "api":
		return ProviderAPI, nil
	default:
		return 0, fmt.Errorf("unknown provider kind: %q", s)
	}
}

// PromptMode selects which prompt text a run uses for a smell.
type PromptMode int

const (
	PromptDefault PromptMode = iota
	PromptDraft
	PromptDraftIfAvailable
)

func (m PromptMode) String() string {
	switch m {
	case PromptDefault:
		return "default"
	case PromptDraft:
		return "draft"
	case PromptDraftIfAvailable:
		return "draft_if_available"
	default:
		return fmt.Sprintf("PromptMode(%d)", int(m))
	}
}

func ParsePromptMode(s string) (PromptMode, error) {
	switch s {
	case "default":
		return PromptDefault, nil
	case "draft":
		return PromptDraft, nil
	case "draft_if_available":
		return PromptDraftIfAvailable, nil
	default:
		return 0, fmt.Errorf("unknown prompt mode: %q", s)
	}
}

// NormalizeMode controls how tolerant response normalization is.
// Strict accepts only the declared schema and returns nothing on any
// mismatch. Salvage recovers what it can and reports diagnostics for the
// rest.
type NormalizeMode int

const (
	NormalizeStrict NormalizeMode = iota
	NormalizeSalvage
)

func (m NormalizeMode) String() string {
	switch m {
	case NormalizeStrict:
		return "strict"
	case NormalizeSalvage:
		return "salvage"
	default:
		return fmt.Sprintf("NormalizeMode(%d)", int(m))
	}
}

func ParseNormalizeMode(s string) (NormalizeMode, error) {
	switch s {
	case "strict":
		return NormalizeStrict, nil
	case "salvage":
		return NormalizeSalvage, nil
	default:
		return 0, fmt.Errorf("unknown normalize mode: %q", s)
	}
}

// LocalConfig configures an Ollama-style local backend.
type LocalConfig struct {
	ModelName      string
	Host           string
	Options        map[string]any
	ResponseFormat string
}

// APIConfig configures a generic HTTP text-generation endpoint.
type APIConfig struct {
	BaseURL  string
	TimeoutS float64
}

// ProviderDefinition is a selectable LLM backend. Exactly one of Local or
// API is set, matching Kind.
type ProviderDefinition struct {
	ProviderID  string
	Kind        ProviderKind
	DisplayName string
	Local       *LocalConfig
	API         *APIConfig
}

// SmellDefinition is a code smell detectable via LLM prompts. A smell
// becomes usable for detection once a default prompt has been saved and
// the smell is enabled.
type SmellDefinition struct {
	SmellID       string
	DisplayName   string
	Description   string
	DefaultPrompt string
	DraftPrompt   string
	CreatedByUser bool
	Enabled       bool
}

// ReadyForDetection reports whether batch detection may use this smell.
func (s SmellDefinition) ReadyForDetection() bool {
	return s.Enabled && strings.TrimSpace(s.DefaultPrompt) != ""
}

// Prompt resolves the prompt text for the given mode. Blankness is judged
// on the trimmed text, but the stored prompt is returned verbatim.
func (s SmellDefinition) Prompt(mode PromptMode) (string, error) {
	switch mode {
	case PromptDefault:
		if strings.TrimSpace(s.DefaultPrompt) == "" {
			return "", fmt.Errorf("default prompt is empty for smell_id=%q", s.SmellID)
		}
		return s.DefaultPrompt, nil
	case PromptDraft:
		if strings.TrimSpace(s.DraftPrompt) == "" {
			return "", fmt.Errorf("no draft prompt available for smell_id=%q", s.SmellID)
		}
		return s.DraftPrompt, nil
	case PromptDraftIfAvailable:
		if strings.TrimSpace(s.DraftPrompt) != "" {
			return s.DraftPrompt, nil
		}
		if strings.TrimSpace(s.DefaultPrompt) == "" {
			return "", fmt.Errorf("no default prompt available for smell_id=%q", s.SmellID)
		}
		return s.DefaultPrompt, nil
	default:
		return "", fmt.Errorf("unknown prompt mode: %v", mode)
	}
}

// PromoteDraft copies the current draft prompt into the default prompt and
// enables detection. The draft itself is kept.
func (s *SmellDefinition) PromoteDraft() error {
	if strings.TrimSpace(s.DraftPrompt) == "" {
		return fmt.Errorf("cannot promote empty draft to default for smell_id=%q", s.SmellID)
	}
	s.DefaultPrompt = s.DraftPrompt
	s.Enabled = true
	return nil
}

// Catalog is the root persisted object: smells, their prompts, and the
// providers they can be run against. Slice order is preserved across
// load/save.
type Catalog struct {
	SchemaVersion int
	Smells        []SmellDefinition
	Providers     []ProviderDefinition
}

// GetSmell returns the smell with the given id.
func (c Catalog) GetSmell(smellID string) (SmellDefinition, error) {
	for _, s := range c.Smells {
		if s.SmellID == smellID {
			return s, nil
		}
	}
	return SmellDefinition{}, &NotFoundError{Kind: "smell", ID: smellID}
}

// UpsertSmell replaces the smell with the same id, or appends it.
func (c *Catalog) UpsertSmell(smell SmellDefinition) {
	for i, existing := range c.Smells {
		if existing.SmellID == smell.SmellID {
			c.Smells[i] = smell
			return
		}
	}
	c.Smells = append(c.Smells, smell)
}

// Clone returns a deep copy. Callers that mutate a run-scoped catalog (for
// example to inject a draft prompt under trial) work on a clone so the
// stored catalog is untouched.
func (c Catalog) Clone() Catalog {
	out := Catalog{SchemaVersion: c.SchemaVersion}
	out.Smells = append([]SmellDefinition(nil), c.Smells...)
	out.Providers = make([]ProviderDefinition, 0, len(c.Providers))
	for _, p := range c.Providers {
		cp := p
		if p.Local != nil {
			local := *p.Local
			if p.Local.Options != nil {
				local.Options = make(map[string]any, len(p.Local.Options))
				for k, v := range p.Local.Options {
					local.Options[k] = v
				}
			}
			cp.Local = &local
		}
		if p.API != nil {
			api := *p.API
			cp.API = &api
		}
		out.Providers = append(out.Providers, cp)
	}
	return out
}

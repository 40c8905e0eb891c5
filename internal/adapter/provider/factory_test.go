package provider

import (
	"strings"
	"testing"

	"sniff/internal/domain"
)

func TestFromDefinition_Local(t *testing.T) {
	def := domain.ProviderDefinition{
		ProviderID: "local-ollama",
		Kind:       domain.ProviderLocal,
		Local:      &domain.LocalConfig{ModelName: "m", Host: "http://box:11434"},
	}

	p, err := FromDefinition(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	local, ok := p.(*Local)
	if !ok {
		t.Fatalf("expected *Local, got %T", p)
	}
	if local.ModelName() != "m" || local.Host() != "http://box:11434" {
		t.Errorf("config not applied: model=%q host=%q", local.ModelName(), local.Host())
	}
}

func TestFromDefinition_LocalWithoutConfig(t *testing.T) {
	p, err := FromDefinition(domain.ProviderDefinition{ProviderID: "x", Kind: domain.ProviderLocal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	local, ok := p.(*Local)
	if !ok {
		t.Fatalf("expected *Local, got %T", p)
	}
	if local.ModelName() != DefaultLocalModel || local.Host() != DefaultOllamaHost {
		t.Errorf("expected defaults, got model=%q host=%q", local.ModelName(), local.Host())
	}
}

func TestFromDefinition_API(t *testing.T) {
	def := domain.ProviderDefinition{
		ProviderID: "remote",
		Kind:       domain.ProviderAPI,
		API:        &domain.APIConfig{BaseURL: "http://api:9000"},
	}

	p, err := FromDefinition(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	api, ok := p.(*API)
	if !ok {
		t.Fatalf("expected *API, got %T", p)
	}
	if api.BaseURL() != "http://api:9000" {
		t.Errorf("expected base url applied, got %q", api.BaseURL())
	}
}

func TestFromDefinition_APIMissingBaseURL(t *testing.T) {
	cases := []domain.ProviderDefinition{
		{ProviderID: "remote", Kind: domain.ProviderAPI},
		{ProviderID: "remote", Kind: domain.ProviderAPI, API: &domain.APIConfig{BaseURL: "  "}},
	}
	for _, def := range cases {
		_, err := FromDefinition(def)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "base_url is required") {
			t.Errorf("expected base_url error, got %v", err)
		}
	}
}

func TestFromDefinition_UnknownKind(t *testing.T) {
	_, err := FromDefinition(domain.ProviderDefinition{ProviderID: "x", Kind: domain.ProviderKind(99)})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported kind") {
		t.Errorf("expected unsupported kind error, got %v", err)
	}
}

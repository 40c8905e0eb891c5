package provider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sniff/internal/domain"
)

func TestNewLocal_Defaults(t *testing.T) {
	p := NewLocal(domain.LocalConfig{})
	if p.ModelName() != DefaultLocalModel {
		t.Errorf("expected default model %q, got %q", DefaultLocalModel, p.ModelName())
	}
	if p.Host() != DefaultOllamaHost {
		t.Errorf("expected default host %q, got %q", DefaultOllamaHost, p.Host())
	}
}

func TestNewLocal_TrimsTrailingSlash(t *testing.T) {
	p := NewLocal(domain.LocalConfig{Host: "http://box:11434/"})
	if p.Host() != "http://box:11434" {
		t.Errorf("expected trailing slash trimmed, got %q", p.Host())
	}
}

func TestLocal_Generate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "model output"}`))
	}))
	defer srv.Close()

	p := NewLocal(domain.LocalConfig{
		ModelName:      "test-model",
		Host:           srv.URL,
		Options:        map[string]any{"temperature": 0.1},
		ResponseFormat: "json",
	})

	out, err := p.Generate("the prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "model output" {
		t.Errorf("expected %q, got %q", "model output", out)
	}

	if gotPath != "/api/generate" {
		t.Errorf("expected /api/generate, got %q", gotPath)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("expected model test-model, got %v", gotBody["model"])
	}
	if gotBody["prompt"] != "the prompt" {
		t.Errorf("expected prompt to pass through, got %v", gotBody["prompt"])
	}
	if gotBody["stream"] != false {
		t.Errorf("expected stream=false, got %v", gotBody["stream"])
	}
	if gotBody["format"] != "json" {
		t.Errorf("expected format=json, got %v", gotBody["format"])
	}
	opts, ok := gotBody["options"].(map[string]any)
	if !ok || opts["temperature"] != 0.1 {
		t.Errorf("expected options to pass through, got %v", gotBody["options"])
	}
}

func TestLocal_Generate_OmitsEmptyOptionalFields(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"response": "ok"}`))
	}))
	defer srv.Close()

	p := NewLocal(domain.LocalConfig{Host: srv.URL})
	if _, err := p.Generate("x"); err != nil {
		t.Fatal(err)
	}

	if _, present := gotBody["options"]; present {
		t.Error("expected options to be omitted when unset")
	}
	if _, present := gotBody["format"]; present {
		t.Error("expected format to be omitted when unset")
	}
}

func TestLocal_Generate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewLocal(domain.LocalConfig{Host: srv.URL})
	_, err := p.Generate("x")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("expected status in error, got %v", err)
	}
	if !strings.Contains(err.Error(), srv.URL) {
		t.Errorf("expected host in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Ollama") {
		t.Errorf("expected Ollama hint in error, got %v", err)
	}
}

func TestLocal_Generate_ConnectError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := srv.URL
	srv.Close()

	p := NewLocal(domain.LocalConfig{Host: host})
	_, err := p.Generate("x")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "ensure Ollama is installed and running") {
		t.Errorf("expected setup hint in error, got %v", err)
	}
}

func TestLocal_Generate_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	p := NewLocal(domain.LocalConfig{Host: srv.URL})
	if _, err := p.Generate("x"); err == nil {
		t.Error("expected error for malformed response, got nil")
	}
}

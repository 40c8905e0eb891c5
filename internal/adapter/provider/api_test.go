package provider

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sniff/internal/domain"
)

func TestAPI_Generate_JSONResponseField(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "generated text"}`))
	}))
	defer srv.Close()

	p := NewAPI(domain.APIConfig{BaseURL: srv.URL})
	out, err := p.Generate("hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "generated text" {
		t.Errorf("expected %q, got %q", "generated text", out)
	}
	if gotPath != "/generate" {
		t.Errorf("expected /generate, got %q", gotPath)
	}
	if !strings.Contains(gotBody, `"prompt":"hello"`) {
		t.Errorf("expected prompt in body, got %q", gotBody)
	}
}

func TestAPI_Generate_NumericResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": 42}`))
	}))
	defer srv.Close()

	p := NewAPI(domain.APIConfig{BaseURL: srv.URL})
	out, err := p.Generate("x")
	if err != nil {
		t.Fatal(err)
	}
	if out != "42" {
		t.Errorf("expected %q, got %q", "42", out)
	}
}

func TestAPI_Generate_JSONWithoutResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"other": 1}`))
	}))
	defer srv.Close()

	p := NewAPI(domain.APIConfig{BaseURL: srv.URL})
	out, err := p.Generate("x")
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"other": 1}` {
		t.Errorf("expected raw body back, got %q", out)
	}
}

func TestAPI_Generate_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain output"))
	}))
	defer srv.Close()

	p := NewAPI(domain.APIConfig{BaseURL: srv.URL})
	out, err := p.Generate("x")
	if err != nil {
		t.Fatal(err)
	}
	if out != "plain output" {
		t.Errorf("expected %q, got %q", "plain output", out)
	}
}

func TestAPI_Generate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewAPI(domain.APIConfig{BaseURL: srv.URL})
	_, err := p.Generate("x")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestAPI_Generate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	p := NewAPI(domain.APIConfig{BaseURL: srv.URL, TimeoutS: 0.05})
	if _, err := p.Generate("x"); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestNewAPI_TrimsTrailingSlash(t *testing.T) {
	p := NewAPI(domain.APIConfig{BaseURL: "http://api:9000/"})
	if p.BaseURL() != "http://api:9000" {
		t.Errorf("expected trailing slash trimmed, got %q", p.BaseURL())
	}
}

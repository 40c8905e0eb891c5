package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sniff/internal/domain"
)

const (
	DefaultOllamaHost = "http://localhost:11434"
	DefaultLocalModel = "qwen2.5-coder:7b"
)

// Local generates text through an Ollama server on this machine (or any
// host speaking the Ollama HTTP API).
type Local struct {
	model   string
	host    string
	options map[string]any
	format  string
	client  *http.Client
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
	Format  string         `json:"format,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewLocal builds an Ollama-backed provider. Missing config falls back to
// the stock local setup. The client deliberately has no timeout: local
// generation on modest hardware can take minutes per prompt.
func NewLocal(cfg domain.LocalConfig) *Local {
	model := cfg.ModelName
	if model == "" {
		model = DefaultLocalModel
	}
	host := strings.TrimRight(cfg.Host, "/")
	if host == "" {
		host = DefaultOllamaHost
	}
	return &Local{
		model:   model,
		host:    host,
		options: cfg.Options,
		format:  cfg.ResponseFormat,
		client:  &http.Client{},
	}
}

func (p *Local) Generate(prompt string) (string, error) {
	reqBody := ollamaRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  false,
		Options: p.options,
		Format:  p.format,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", p.host+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", p.connectError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", p.connectError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", p.connectError(fmt.Errorf("server returned status %d: %s", resp.StatusCode, preview(body)))
	}

	var genResp ollamaResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", p.connectError(fmt.Errorf("failed to parse response: %w", err))
	}

	return genResp.Response, nil
}

func (p *Local) connectError(err error) error {
	return fmt.Errorf("failed to connect to Ollama server (%s): %w; ensure Ollama is installed and running (default: %s)",
		p.host, err, DefaultOllamaHost)
}

func (p *Local) ModelName() string {
	return p.model
}

func (p *Local) Host() string {
	return p.host
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

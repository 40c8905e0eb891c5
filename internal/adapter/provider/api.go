package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sniff/internal/domain"
)

// DefaultAPITimeout bounds one generation request when the definition does
// not set timeout_s.
const DefaultAPITimeout = 60 * time.Second

// API calls a generic HTTP text-generation endpoint. The contract is
// minimal on purpose: POST {base_url}/generate with {"prompt": ...}, and
// the reply is either a JSON object carrying a "response" field or plain
// text.
type API struct {
	baseURL string
	client  *http.Client
}

type apiRequest struct {
	Prompt string `json:"prompt"`
}

func NewAPI(cfg domain.APIConfig) *API {
	timeout := DefaultAPITimeout
	if cfg.TimeoutS > 0 {
		timeout = time.Duration(cfg.TimeoutS * float64(time.Second))
	}
	return &API{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *API) Generate(prompt string) (string, error) {
	jsonData, err := json.Marshal(apiRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", p.baseURL+"/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", p.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, preview(body))
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var data any
		if err := json.Unmarshal(body, &data); err != nil {
			return "", fmt.Errorf("failed to parse JSON response (body: %s): %w", preview(body), err)
		}
		if obj, ok := data.(map[string]any); ok {
			if v, ok := obj["response"]; ok {
				return asString(v), nil
			}
		}
	}

	return string(body), nil
}

func (p *API) BaseURL() string {
	return p.baseURL
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

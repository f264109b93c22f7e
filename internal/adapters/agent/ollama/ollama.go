// Package ollama implements the agent provider against a local Ollama
// instance via its /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/proflock/browserd/internal/config"
)

// Provider talks to Ollama's generate API behind ports.AgentProvider.
type Provider struct {
	client       *http.Client
	baseURL      string
	defaultModel string
}

func NewProvider(cfg config.OllamaConfig, defaultModel string) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Provider{
		client:       &http.Client{Timeout: 10 * time.Minute},
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultModel: defaultModel,
	}
}

func (p *Provider) Name() string { return "ollama" }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (p *Provider) Run(ctx context.Context, task string, model string) (string, error) {
	if model == "" {
		model = p.defaultModel
	}

	payload, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: task,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return genResp.Response, nil
}

package agent

import (
	"fmt"

	"github.com/proflock/browserd/internal/adapters/agent/anthropic"
	"github.com/proflock/browserd/internal/adapters/agent/ollama"
	"github.com/proflock/browserd/internal/adapters/agent/openai"
	"github.com/proflock/browserd/internal/config"
	"github.com/proflock/browserd/internal/core/ports"
)

// NewProvider constructs the agent provider selected by config. Called once
// at server startup. An empty provider name returns (nil, nil): the service
// runs degraded and every job errors with a fixed diagnostic, but job
// creation keeps succeeding.
func NewProvider(cfg config.AgentConfig) (ports.AgentProvider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI, cfg.DefaultModel), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic, cfg.DefaultModel), nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama, cfg.DefaultModel), nil
	default:
		return nil, fmt.Errorf("unknown agent provider %q: must be one of openai, anthropic, ollama", cfg.Provider)
	}
}

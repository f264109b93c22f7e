// Package openai implements the agent provider on the OpenAI Chat
// Completions API using the official client.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/proflock/browserd/internal/config"
)

const systemPrompt = "You are a web browsing agent. Carry out the user's task and " +
	"reply with a concise free-text summary of what you did and found. " +
	"Include the full URL of every page you relied on."

// Provider wraps the OpenAI client behind ports.AgentProvider.
type Provider struct {
	client       openai.Client
	defaultModel string
}

func NewProvider(cfg config.OpenAIConfig, defaultModel string) *Provider {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Provider{
		client:       openai.NewClient(opts...),
		defaultModel: defaultModel,
	}
}

func (p *Provider) Name() string { return "openai" }

// Run executes the task as a single completion and returns the model's text.
func (p *Provider) Run(ctx context.Context, task string, model string) (string, error) {
	if model == "" {
		model = p.defaultModel
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(task),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

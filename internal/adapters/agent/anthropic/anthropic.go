// Package anthropic implements the agent provider on the Anthropic Messages
// API using the official client.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/proflock/browserd/internal/config"
)

const systemPrompt = "You are a web browsing agent. Carry out the user's task and " +
	"reply with a concise free-text summary of what you did and found. " +
	"Include the full URL of every page you relied on."

const maxTokens = 4096

// Provider wraps the Anthropic client behind ports.AgentProvider.
type Provider struct {
	client       *anthropic.Client
	defaultModel string
}

func NewProvider(cfg config.AnthropicConfig, defaultModel string) *Provider {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	client := anthropic.NewClient(opts...)
	return &Provider{
		client:       &client,
		defaultModel: defaultModel,
	}
}

func (p *Provider) Name() string { return "anthropic" }

// Run executes the task as a single message exchange and returns the
// concatenated text blocks of the reply.
func (p *Provider) Run(ctx context.Context, task string, model string) (string, error) {
	if model == "" {
		model = p.defaultModel
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(task)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return b.String(), nil
}

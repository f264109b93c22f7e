// Package mock provides a scriptable agent provider for tests.
package mock

import (
	"context"

	"github.com/proflock/browserd/internal/core/ports"
)

// Provider satisfies ports.AgentProvider for testing.
type Provider struct {
	Name_   string
	RunFunc func(ctx context.Context, task string, model string) (string, error)
}

func (p *Provider) Name() string { return p.Name_ }

func (p *Provider) Run(ctx context.Context, task string, model string) (string, error) {
	if p.RunFunc != nil {
		return p.RunFunc(ctx, task, model)
	}
	return "", nil
}

// NewProvider returns a Provider that echoes a fixed summary.
func NewProvider(output string) *Provider {
	return &Provider{
		Name_: "mock",
		RunFunc: func(context.Context, string, string) (string, error) {
			return output, nil
		},
	}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		RunFunc: func(context.Context, string, string) (string, error) {
			return "", err
		},
	}
}

// NewBlockingProvider returns a Provider that blocks until release is closed,
// then returns output. Used to hold a job in the running state.
func NewBlockingProvider(release <-chan struct{}, output string) *Provider {
	return &Provider{
		Name_: "mock-blocking",
		RunFunc: func(ctx context.Context, _ string, _ string) (string, error) {
			select {
			case <-release:
				return output, nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	}
}

var _ ports.AgentProvider = (*Provider)(nil)

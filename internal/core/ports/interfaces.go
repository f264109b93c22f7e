package ports

import "context"

// AgentProvider abstracts the browser-agent execution backend (OpenAI,
// Anthropic, a local Ollama instance, ...). Run executes the task to
// completion and returns the agent's free-text output.
type AgentProvider interface {
	Name() string
	Run(ctx context.Context, task string, model string) (string, error)
}

// ObjectStore abstracts artifact storage with signed-URL issuance. Upload
// stores data under name and returns a URL a browser client can fetch.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, name string) (string, error)
}

// FrameRenderer produces placeholder frame images attached to progress events.
type FrameRenderer interface {
	Render(label string) ([]byte, error)
}

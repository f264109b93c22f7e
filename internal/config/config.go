package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the browserd server, read once at
// startup from environment variables.
type Config struct {
	Server   ServerConfig
	Agent    AgentConfig
	Supabase SupabaseConfig
}

type ServerConfig struct {
	Port              int
	CORSOrigins       []string
	HeartbeatInterval time.Duration
}

type AgentConfig struct {
	// Provider selects the agent backend. Empty means no backend is
	// configured: jobs still get accepted but degrade straight to an error
	// status with a fixed diagnostic.
	Provider     string
	DefaultModel string
	Timeout      time.Duration
	OpenAI       OpenAIConfig
	Anthropic    AnthropicConfig
	Ollama       OllamaConfig
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey string
}

type OllamaConfig struct {
	BaseURL string
}

type SupabaseConfig struct {
	URL          string
	Key          string
	Bucket       string
	SignedURLTTL time.Duration
}

var validProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message on invalid values.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              envInt("BROWSERD_PORT", 8000),
			CORSOrigins:       splitList(envString("BROWSERD_CORS_ORIGINS", "*")),
			HeartbeatInterval: envDuration("BROWSERD_HEARTBEAT_INTERVAL", 2*time.Second),
		},
		Agent: AgentConfig{
			Provider:     os.Getenv("BROWSER_AGENT_PROVIDER"),
			DefaultModel: envString("BROWSER_AGENT_MODEL", "gpt-4.1-mini"),
			Timeout:      envDuration("BROWSER_AGENT_TIMEOUT", 10*time.Minute),
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
			},
			Anthropic: AnthropicConfig{
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
			},
		},
		Supabase: SupabaseConfig{
			URL:          os.Getenv("SUPABASE_URL"),
			Key:          firstEnv("SUPABASE_SERVICE_KEY", "SUPABASE_ANON_KEY"),
			Bucket:       envString("SUPABASE_BUCKET", "browser-frames"),
			SignedURLTTL: envDuration("SUPABASE_SIGNED_URL_TTL", 15*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("BROWSERD_PORT must be a valid port, got %d", c.Server.Port)
	}

	if p := c.Agent.Provider; p != "" && !validProviders[p] {
		return fmt.Errorf("BROWSER_AGENT_PROVIDER must be one of openai, anthropic, ollama; got %q", p)
	}
	if c.Agent.Provider == "openai" && c.Agent.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when BROWSER_AGENT_PROVIDER is openai")
	}
	if c.Agent.Provider == "anthropic" && c.Agent.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when BROWSER_AGENT_PROVIDER is anthropic")
	}

	if c.Supabase.URL != "" && !strings.HasPrefix(c.Supabase.URL, "http://") && !strings.HasPrefix(c.Supabase.URL, "https://") {
		return fmt.Errorf("SUPABASE_URL must start with http:// or https://, got %q", c.Supabase.URL)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

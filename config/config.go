package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	PlatformOpenAI    = "OpenAI"
	PlatformAnthropic = "Anthropic"
	PlatformGoogle    = "Google"

	// HomeDirName is the per-user directory for agent state that is not
	// project-scoped, e.g. the chat prompt history.
	HomeDirName = ".mle-agent"

	defaultEmbeddingModel = "text-embedding-ada-002"
)

type Config struct {
	Platform       string    `json:"platform"`
	ApiKey         string    `json:"api_key"`
	Model          string    `json:"model,omitempty"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	Warehouse      Warehouse `json:"warehouse,omitempty"`
}

type Warehouse struct {
	DSN string `json:"dsn"`
}

// Load reads the JSON config file once. The api key falls back to the
// platform's conventional environment variable when the file leaves it
// empty.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(c.EmbeddingModel) == 0 {
		c.EmbeddingModel = defaultEmbeddingModel
	}

	if len(c.ApiKey) == 0 {
		c.ApiKey = apiKeyFromEnv(c.Platform)
	}

	return &c, nil
}

func apiKeyFromEnv(platform string) string {
	switch platform {
	case PlatformAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case PlatformGoogle:
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// Home returns the per-user config home, creating it if needed.
func Home() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, HomeDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return dir, nil
}

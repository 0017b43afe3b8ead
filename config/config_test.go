package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"platform": "OpenAI",
		"api_key": "sk-test",
		"model": "gpt-4",
		"warehouse": {"dsn": "postgres://localhost/warehouse"}
	}`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, PlatformOpenAI, c.Platform)
	assert.Equal(t, "sk-test", c.ApiKey)
	assert.Equal(t, "gpt-4", c.Model)
	assert.Equal(t, "postgres://localhost/warehouse", c.Warehouse.DSN)
}

func TestLoad_DefaultEmbeddingModel(t *testing.T) {
	path := writeConfig(t, `{"platform": "OpenAI", "api_key": "sk-test"}`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-ada-002", c.EmbeddingModel)
}

func TestLoad_ApiKeyFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	path := writeConfig(t, `{"platform": "Anthropic"}`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-test", c.ApiKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)

	_, err := Load(path)
	assert.Error(t, err)
}

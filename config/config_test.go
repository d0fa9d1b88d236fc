package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "public", cfg.PublicDir)
	assert.Equal(t, 30, cfg.Summary.FetchTimeoutSeconds)
	assert.Equal(t, 4, cfg.Summary.Concurrency)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"llm": {"provider": "deepseek", "model": "deepseek-chat", "api_key": "k", "base_url": "https://api.example.com/v1"},
		"server_addr": ":9090",
		"public_dir": "pages"
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "pages", cfg.PublicDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"llm": {"api_key": "from-file"}}`), 0o644))

	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("PUBLIC_DIR", "elsewhere")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, "elsewhere", cfg.PublicDir)
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

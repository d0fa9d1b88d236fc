// Package config loads process configuration from a JSON file with
// environment-variable overrides. One Config is built in main and passed by
// reference to every component that needs it; nothing reads the environment
// after startup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config is the top-level process configuration.
type Config struct {
	LLM        LLMConfig     `json:"llm"`
	ServerAddr string        `json:"server_addr,omitempty"`
	PublicDir  string        `json:"public_dir,omitempty"`
	Summary    SummaryConfig `json:"summary,omitempty"`
	Log        LogConfig     `json:"log,omitempty"`
}

// LLMConfig selects and authenticates the completion provider.
type LLMConfig struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// SummaryConfig tunes the summarizer's fetch stage.
type SummaryConfig struct {
	FetchTimeoutSeconds int   `json:"fetch_timeout_seconds,omitempty"`
	MaxBodyBytes        int64 `json:"max_body_bytes,omitempty"`
	Concurrency         int   `json:"concurrency,omitempty"`
}

// LogConfig controls the zap logger built at startup.
type LogConfig struct {
	Level  string `json:"level,omitempty"`  // debug, info, warn, error
	Format string `json:"format,omitempty"` // json or console
}

// Load reads the JSON config file if it exists, then overlays environment
// variables. A missing file is not an error: the environment alone can
// configure the process (OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL,
// SERVER_ADDR, PUBLIC_DIR, LOG_LEVEL, LOG_FORMAT, SUMMARY_CONCURRENCY).
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Config{}, err
		}
	}
	cfg.applyEnv()
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.ServerAddr = v
	}
	if v := os.Getenv("PUBLIC_DIR"); v != "" {
		c.PublicDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("SUMMARY_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Summary.Concurrency = n
		}
	}
}

func (c *Config) setDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.Summary.FetchTimeoutSeconds == 0 {
		c.Summary.FetchTimeoutSeconds = 30
	}
	if c.Summary.MaxBodyBytes == 0 {
		c.Summary.MaxBodyBytes = 2 << 20
	}
	if c.Summary.Concurrency == 0 {
		c.Summary.Concurrency = 4
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Package file loads engine configuration from a TOML file in the
// tipitaka config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

// ModelConfig describes one model the engine can use.
type ModelConfig struct {
	// ID is the lifecycle catalog ID, matching the artifact file name
	// without extension.
	ID string `toml:"id"`

	// RAMMB is the resident memory cost when loaded.
	RAMMB int `toml:"ram_mb"`
}

// Config is the engine configuration, stored at
// ~/.tipitaka/config.toml.
type Config struct {
	// DataDir holds the chunk store database. Defaults to
	// ~/.tipitaka/data.
	DataDir string `toml:"data_dir"`

	// ModelsDir holds model artifact files. Defaults to
	// ~/.tipitaka/models.
	ModelsDir string `toml:"models_dir"`

	Runtime struct {
		// BaseURL is the local inference runtime's OpenAI-compatible
		// API root.
		BaseURL string `toml:"base_url"`

		// TimeoutSeconds is the per-request timeout.
		TimeoutSeconds int `toml:"timeout_seconds"`
	} `toml:"runtime"`

	Memory struct {
		// BudgetMB caps the total RAM of loaded models.
		BudgetMB int `toml:"budget_mb"`
	} `toml:"memory"`

	Models struct {
		Generation      ModelConfig `toml:"generation"`
		Embedding       ModelConfig `toml:"embedding"`
		SpeechToText    ModelConfig `toml:"speech_to_text"`
		SpeechSynthesis ModelConfig `toml:"speech_synthesis"`

		// EmbeddingDimensions is the embedding vector size. Must match
		// the dimensions the corpus was embedded with.
		EmbeddingDimensions int `toml:"embedding_dimensions"`

		// Voice selects the synthesis voice; empty uses the runtime
		// default.
		Voice string `toml:"voice"`
	} `toml:"models"`

	Query struct {
		TopK      int     `toml:"top_k"`
		Threshold float64 `toml:"threshold"`
		MaxTokens int     `toml:"max_tokens"`
	} `toml:"query"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Runtime.TimeoutSeconds = 120
	cfg.Memory.BudgetMB = 4096
	cfg.Models.Generation = ModelConfig{ID: "qwen2.5-3b-instruct", RAMMB: 2500}
	cfg.Models.Embedding = ModelConfig{ID: "paraphrase-multilingual-minilm-l12-v2", RAMMB: 500}
	cfg.Models.SpeechToText = ModelConfig{ID: "whisper-small", RAMMB: 800}
	cfg.Models.SpeechSynthesis = ModelConfig{ID: "piper-th", RAMMB: 300}
	cfg.Models.EmbeddingDimensions = 384
	cfg.Query.TopK = domain.DefaultTopK
	cfg.Query.Threshold = domain.DefaultThreshold
	cfg.Query.MaxTokens = domain.DefaultMaxTokens
	return cfg
}

// Load reads the configuration file, creating it with defaults on
// first run. If path is empty, ~/.tipitaka/config.toml is used.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, ".tipitaka", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		cfg := Default()
		if err := cfg.fillPaths(filepath.Dir(path)); err != nil {
			return nil, err
		}
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.fillPaths(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration with restricted permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// fillPaths defaults and creates the data and model directories
// relative to the config directory.
func (c *Config) fillPaths(configDir string) error {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(configDir, "data")
	}
	if c.ModelsDir == "" {
		c.ModelsDir = filepath.Join(configDir, "models")
	}
	for _, dir := range []string{c.DataDir, c.ModelsDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

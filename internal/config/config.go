package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ritchiero/Budget-Agent/internal/logger"
	"github.com/ritchiero/Budget-Agent/internal/timewindow"
)

// DataDirEnv overrides where session logs are read from
const DataDirEnv = "OPENCLAW_DATA_DIR"

// Config holds the application configuration
type Config struct {
	DataDir           string            `yaml:"data_dir"`
	DeriveMissingCost bool              `yaml:"derive_missing_cost"`
	Window            timewindow.Policy `yaml:"window"`
	Server            ServerConfig      `yaml:"server"`
	LLM               LLMConfig         `yaml:"llm"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port      string  `yaml:"port"`
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
	// APIKeyHash is a bcrypt hash; when set, POST /api/chat requires the key
	APIKeyHash string `yaml:"api_key_hash"`
}

// LLMConfig holds the chat-completions provider settings
type LLMConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataDir:           "data",
		DeriveMissingCost: true,
		Window:            timewindow.DefaultPolicy(),
		Server: ServerConfig{
			Port:      "8080",
			RateLimit: 5,
			RateBurst: 20,
		},
		LLM: LLMConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "anthropic/claude-sonnet-4",
			Timeout: 60 * time.Second,
		},
	}
}

// Path returns the path to the config file
func Path() (string, error) {
	if p := os.Getenv("BUDGET_AGENT_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".budget-agent.yaml"), nil
}

// Load loads the configuration from disk and applies environment overrides.
// A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the configuration from a specific path and applies
// environment overrides
func LoadFile(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// ReadFile reads the file over the defaults without environment overrides.
// Use it when the result will be saved back.
func ReadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Save writes the configuration to disk
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) applyEnv() {
	c.DataDir = getEnvOrDefault(DataDirEnv, c.DataDir)
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.RateLimit = getEnvAsFloat("RATE_LIMIT", c.Server.RateLimit)
	c.LLM.APIKey = getEnvOrDefault("OPENROUTER_API_KEY", c.LLM.APIKey)
	c.LLM.Model = getEnvOrDefault("OPENROUTER_MODEL", c.LLM.Model)
	c.LLM.BaseURL = getEnvOrDefault("OPENROUTER_BASE_URL", c.LLM.BaseURL)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid float value, using default")
		return defaultValue
	}
	return value
}

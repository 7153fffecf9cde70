package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	askerrors "github.com/abdul-hamid-achik/ask/internal/errors"
)

// ModelTier represents the model capability level
type ModelTier string

const (
	TierFast   ModelTier = "fast"   // Claude Haiku
	TierSmart  ModelTier = "smart"  // Claude Sonnet
	TierGenius ModelTier = "genius" // Claude Opus
)

// Theme selects the prompt color palette
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme validates a theme name
func ParseTheme(value string) (Theme, error) {
	switch Theme(value) {
	case ThemeDark, ThemeLight:
		return Theme(value), nil
	default:
		return "", fmt.Errorf("invalid theme %q: use 'light' or 'dark'", value)
	}
}

// RateLimitConfig holds client-side rate limiting configuration
type RateLimitConfig struct {
	MaxRetries         int           `yaml:"max_retries"`
	BaseDelay          time.Duration `yaml:"base_delay"`
	MaxDelay           time.Duration `yaml:"max_delay"`
	TokensPerMinute    int           `yaml:"tokens_per_minute"`
	EnableRateLimiting bool          `yaml:"enable_rate_limiting"`
}

// ContextConfig holds conversation context budgets. These are policy
// constants, not measurements; the token estimate is chars/ratio.
type ContextConfig struct {
	MaxContextTokens   int `yaml:"max_context_tokens"`   // Budget for rendered history (default: 3000)
	TokenEstimateRatio int `yaml:"token_estimate_ratio"` // Characters per token (default: 4)
	OutputCapNormal    int `yaml:"output_cap_normal"`    // Stored output cap in chars (default: 500)
	OutputCapCompact   int `yaml:"output_cap_compact"`   // Stricter cap under compaction (default: 200)
}

// Config holds the application configuration
type Config struct {
	APIKey      string          `yaml:"-"` // From environment only
	Theme       Theme           `yaml:"theme"`
	DefaultTier ModelTier       `yaml:"default_tier"`
	MaxTokens   int             `yaml:"max_tokens"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Context     ContextConfig   `yaml:"context"`

	// Internal: where config was loaded from
	configPath string
}

// APIKeyEnvVar is the required credential variable
const APIKeyEnvVar = "ANTHROPIC_API_KEY"

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Theme:       ThemeDark,
		DefaultTier: TierFast,
		MaxTokens:   1024,
		RateLimit: RateLimitConfig{
			MaxRetries:         5,
			BaseDelay:          1 * time.Second,
			MaxDelay:           60 * time.Second,
			TokensPerMinute:    30000,
			EnableRateLimiting: true,
		},
		Context: ContextConfig{
			MaxContextTokens:   3000,
			TokenEstimateRatio: 4,
			OutputCapNormal:    500,
			OutputCapCompact:   200,
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	// Best-effort .env support; the real environment wins
	_ = godotenv.Load()

	cfg := DefaultConfig()

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFromFile(path); err != nil {
				return nil, askerrors.ConfigLoadFailed(path, err)
			}
			cfg.configPath = path
			break
		}
	}

	if cfg.configPath == "" {
		if err := cfg.createDefault(); err != nil {
			// Non-fatal: just use defaults
			fmt.Fprintf(os.Stderr, "Warning: could not create default config: %v\n", err)
		}
	}

	cfg.APIKey = os.Getenv(APIKeyEnvVar)
	if cfg.APIKey == "" {
		return nil, askerrors.AuthMissing(APIKeyEnvVar)
	}

	return cfg, nil
}

// getConfigPaths returns config file paths in priority order
func getConfigPaths() []string {
	paths := []string{
		"ask.yaml",
		".ask/config.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ask", "config.yaml"))
	}

	return paths
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// createDefault creates a default config file under the user config dir
func (c *Config) createDefault() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	dir := filepath.Join(home, ".config", "ask")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	c.configPath = filepath.Join(dir, "config.yaml")
	return c.Save()
}

// Save writes the current configuration back to its file. Used to
// persist a theme change made via the --theme flag.
func (c *Config) Save() error {
	if c.configPath == "" {
		return c.createDefault()
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	content := "# ask configuration\n\n" + string(data)
	return os.WriteFile(c.configPath, []byte(content), 0644)
}

// GetModel returns the Anthropic model ID for a tier
func (c *Config) GetModel(tier ModelTier) string {
	switch tier {
	case TierFast:
		return "claude-haiku-4-5-20251015"
	case TierSmart:
		return "claude-sonnet-4-5-20250929"
	case TierGenius:
		return "claude-opus-4-5-20251101"
	default:
		return "claude-sonnet-4-5-20250929"
	}
}

// GetDefaultModel returns the model ID for the default tier
func (c *Config) GetDefaultModel() string {
	return c.GetModel(c.DefaultTier)
}

// ResolveModel maps a --model value to a model ID. Tier names resolve
// through the tier table; anything else is passed through verbatim.
func (c *Config) ResolveModel(value string) string {
	if value == "" {
		return c.GetDefaultModel()
	}
	switch ModelTier(value) {
	case TierFast, TierSmart, TierGenius:
		return c.GetModel(ModelTier(value))
	default:
		return value
	}
}

// ConfigPath returns where the config was loaded from
func (c *Config) ConfigPath() string {
	return c.configPath
}

package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials   CredentialsConfig   `toml:"credentials"`
	Database      DatabaseConfig      `toml:"database"`
	Player        PlayerConfig        `toml:"player"`
	Search        SearchConfig        `toml:"search"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
	Gemini  GeminiConfig  `toml:"gemini"`
}

// YouTubeConfig contains YouTube Data API settings.
type YouTubeConfig struct {
	APIKey  string `toml:"api_key"`
	Region  string `toml:"region"`
	BaseURL string `toml:"base_url"`
}

// GeminiConfig contains generative playlist API settings.
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig contains media widget settings.
type PlayerConfig struct {
	MPVPath        string  `toml:"mpv_path"`
	SocketPath     string  `toml:"socket_path"`
	PollIntervalMS int     `toml:"poll_interval_ms"`
	Volume         float64 `toml:"volume"`
}

// SearchConfig contains catalog lookup settings.
type SearchConfig struct {
	DebounceMS  int     `toml:"debounce_ms"`
	MaxResults  int64   `toml:"max_results"`
	Concurrency int     `toml:"concurrency"`
	RateLimit   float64 `toml:"rate_limit"`
}

// NotificationsConfig contains notification display settings.
type NotificationsConfig struct {
	HideAfterMS int `toml:"hide_after_ms"`
}

// PollInterval returns the progress polling cadence.
func (c PlayerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Debounce returns the search input debounce delay.
func (c SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// HideAfter returns how long a notification stays visible.
func (c NotificationsConfig) HideAfter() time.Duration {
	return time.Duration(c.HideAfterMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads envFiles (missing files are ignored) and overlays credentials found in the environment.
//
// GEMINI_API_KEY takes precedence over the generic API_KEY. A file that exists but cannot be parsed is
// reported in the returned error; the environment is applied either way.
func (c *Config) ApplyEnv(envFiles ...string) error {
	var errs []error
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				errs = append(errs, fmt.Errorf("failed to load %s: %w", f, err))
			}
		}
	}

	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.Credentials.YouTube.APIKey = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.Credentials.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Credentials.Gemini.APIKey = v
	}
	if v := os.Getenv("NEXTMUSIC_DB"); v != "" {
		c.Database.Path = v
	}
	return errors.Join(errs...)
}

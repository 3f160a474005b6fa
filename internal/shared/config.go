package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Feed        FeedConfig        `toml:"feed"`
	Resolver    ResolverConfig    `toml:"resolver"`
	Quota       QuotaConfig       `toml:"quota"`
}

// CredentialsConfig contains per-provider credentials and endpoints.
type CredentialsConfig struct {
	Identity IdentityConfig `toml:"identity"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	Pexels   PexelsConfig   `toml:"pexels"`
	OpenAlex OpenAlexConfig `toml:"openalex"`
	GitHub   GitHubConfig   `toml:"github"`
}

// IdentityConfig contains the email/password identity provider settings.
type IdentityConfig struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	TokenURL string `toml:"token_url"`
}

// YouTubeConfig contains YouTube Data API credentials.
type YouTubeConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// PexelsConfig contains Pexels video API credentials.
type PexelsConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// OpenAlexConfig contains OpenAlex works API settings.
//
// Mailto identifies the caller for OpenAlex's polite pool.
type OpenAlexConfig struct {
	Mailto  string `toml:"mailto"`
	BaseURL string `toml:"base_url"`
}

// GitHubConfig identifies the repository whose contents back the file listing.
type GitHubConfig struct {
	Owner   string `toml:"owner"`
	Repo    string `toml:"repo"`
	Path    string `toml:"path"`
	Ref     string `toml:"ref"`
	BaseURL string `toml:"base_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// FeedConfig contains feed paging defaults.
type FeedConfig struct {
	VideoPageSize int    `toml:"video_page_size"`
	DocPageSize   int    `toml:"doc_page_size"`
	DefaultQuery  string `toml:"default_query"`
}

// ResolverConfig contains stream resolution preferences.
type ResolverConfig struct {
	PreferHLS bool   `toml:"prefer_hls"`
	MinHeight int    `toml:"min_height"`
	PlayerURL string `toml:"player_url"`
}

// QuotaConfig defines how a quota-exceeded rejection is recognized.
//
// Detection is configurable because providers signal quota exhaustion with a
// status code plus a message substring, not a stable contract.
type QuotaConfig struct {
	Status int    `toml:"status"`
	Match  string `toml:"match"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
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

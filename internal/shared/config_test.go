package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	t.Run("embedded defaults parse", func(t *testing.T) {
		if config.Credentials.YouTube.BaseURL == "" {
			t.Error("expected youtube base url")
		}
		if config.Credentials.Identity.TokenURL == "" {
			t.Error("expected identity token url")
		}
	})

	t.Run("feed defaults", func(t *testing.T) {
		if config.Feed.VideoPageSize != 10 {
			t.Errorf("expected video page size 10, got %d", config.Feed.VideoPageSize)
		}
		if config.Feed.DefaultQuery == "" {
			t.Error("expected a default query")
		}
	})

	t.Run("quota detection defaults", func(t *testing.T) {
		if config.Quota.Status != 403 {
			t.Errorf("expected quota status 403, got %d", config.Quota.Status)
		}
		if config.Quota.Match != "quotaexceeded" {
			t.Errorf("expected quota match substring, got %q", config.Quota.Match)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses a toml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.youtube]
api_key = "yt-key"
base_url = "https://example.com/youtube"

[feed]
video_page_size = 25
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Credentials.YouTube.APIKey != "yt-key" {
			t.Errorf("unexpected api key: %q", config.Credentials.YouTube.APIKey)
		}
		if config.Feed.VideoPageSize != 25 {
			t.Errorf("unexpected page size: %d", config.Feed.VideoPageSize)
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("invalid toml returns error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("not [valid"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for invalid toml")
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("writes the example config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("written config should parse: %v", err)
		}
		if config.Database.Path == "" {
			t.Error("expected database path in written config")
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file exists")
		}
	})
}

package config

import (
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/contentforge/internal/assets"
)

const (
	defaultContentDir = "content"
	defaultDataDir    = ".contentforge/data"
	defaultAssetsDir  = ".contentforge/assets"
	defaultBase       = "/"
)

func (c *Config) applyDefaults(configDir string) {
	if c.Root == "" {
		c.Root = configDir
	}
	if c.Content == "" {
		c.Content = defaultContentDir
	}
	if c.Output.Data == "" {
		c.Output.Data = defaultDataDir
	}
	if c.Output.Assets == "" {
		c.Output.Assets = defaultAssetsDir
	}
	if c.Output.Base == "" {
		c.Output.Base = defaultBase
	}
	if c.Output.Naming == "" {
		c.Output.Naming = assets.DefaultNaming
	}
}

// loadEnvFiles loads .env/.env.local if present. Existing process environment
// always wins (godotenv.Load never overrides).
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// applyEnvOverrides lets CONTENTFORGE_* variables override file settings.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("CONTENTFORGE_CONTENT"); v != "" {
		c.Content = v
	}
	if v := os.Getenv("CONTENTFORGE_OUTPUT_DATA"); v != "" {
		c.Output.Data = v
	}
	if v := os.Getenv("CONTENTFORGE_OUTPUT_ASSETS"); v != "" {
		c.Output.Assets = v
	}
	if v := os.Getenv("CONTENTFORGE_OUTPUT_BASE"); v != "" {
		c.Output.Base = v
	}
	if v := os.Getenv("CONTENTFORGE_OUTPUT_NAMING"); v != "" {
		c.Output.Naming = v
	}
}

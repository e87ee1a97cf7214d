// Package config loads and validates the contentforge configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/contentforge/internal/buildctx"
	forgeerrors "git.home.luguber.info/inful/contentforge/internal/errors"
)

// Config is the root configuration.
type Config struct {
	// Root anchors all relative paths. Defaults to the config file's dir.
	Root string `yaml:"root"`
	// Content is the directory scanned for source documents.
	Content string `yaml:"content"`

	Output      OutputConfig       `yaml:"output"`
	Collections []CollectionConfig `yaml:"collections"`
}

// OutputConfig describes where build results land.
type OutputConfig struct {
	// Data receives validated document JSON.
	Data string `yaml:"data"`
	// Assets receives materialized binary assets.
	Assets string `yaml:"assets"`
	// Base is the public base path assets are served under.
	Base string `yaml:"base"`
	// Naming is the asset naming template.
	Naming string `yaml:"naming"`
	// Clean wipes the assets directory before a build.
	Clean bool `yaml:"clean"`
}

// CollectionConfig is a named group of source files sharing one schema.
type CollectionConfig struct {
	Name   string               `yaml:"name"`
	Glob   string               `yaml:"glob"`
	Fields map[string]FieldSpec `yaml:"fields"`
}

// Load reads, defaults and validates a configuration file. Env overrides from
// .env/.env.local are applied first. Validation failures here are fatal: a
// broken output configuration must never surface as per-file issues.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, forgeerrors.ConfigNotFound(path)
		}
		return nil, forgeerrors.Wrap(err, forgeerrors.CategoryConfig, forgeerrors.SeverityFatal, "read configuration")
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, forgeerrors.Wrap(err, forgeerrors.CategoryConfig, forgeerrors.SeverityFatal, "parse configuration")
	}

	configDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, forgeerrors.Wrap(err, forgeerrors.CategoryConfig, forgeerrors.SeverityFatal, "resolve configuration dir")
	}
	cfg.applyDefaults(configDir)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BuildOutput resolves the output configuration into the form the build
// context carries, with all paths absolute.
func (c *Config) BuildOutput() buildctx.Output {
	return buildctx.Output{
		DataDir:   c.absolute(c.Output.Data),
		AssetsDir: c.absolute(c.Output.Assets),
		Base:      c.Output.Base,
		Naming:    c.Output.Naming,
		Clean:     c.Output.Clean,
	}
}

// ContentDir returns the absolute content directory.
func (c *Config) ContentDir() string {
	return c.absolute(c.Content)
}

func (c *Config) absolute(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Collection returns the collection config by name.
func (c *Config) Collection(name string) (*CollectionConfig, error) {
	for i := range c.Collections {
		if c.Collections[i].Name == name {
			return &c.Collections[i], nil
		}
	}
	return nil, fmt.Errorf("unknown collection %q", name)
}

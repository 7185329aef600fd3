package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames lists the configuration files searched for, in order, relative
// to the repository work tree.
var FileNames = []string{
	"gitversion.yml",
	"gitversion.yaml",
	filepath.Join(".github", "gitversion.yml"),
	filepath.Join(".github", "gitversion.yaml"),
	"gitversion.toml",
}

// LoadFromFile reads a configuration file. Files ending in .toml are
// decoded as TOML, everything else as YAML.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return LoadFromTOML(data)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses YAML configuration.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadFromTOML parses TOML configuration.
func LoadFromTOML(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// FindConfigFile returns the first of FileNames present under dir, or ""
// when there is none.
func FindConfigFile(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load builds the configuration for dir: defaults, then the config file,
// then overrides in order. An explicit path must exist; otherwise
// FindConfigFile is used and a missing file means defaults.
func Load(dir, explicit string, overrides ...*Config) (*Config, error) {
	path := explicit
	if path == "" {
		path = FindConfigFile(dir)
	}

	b := NewBuilder()
	if path != "" {
		cfg, err := LoadFromFile(path)
		switch {
		case err == nil:
			b.Add(cfg)
		case explicit == "" && errors.Is(err, os.ErrNotExist):
			// removed since discovery; defaults apply
		default:
			return nil, err
		}
	}
	for _, o := range overrides {
		b.Add(o)
	}
	return b.Build()
}

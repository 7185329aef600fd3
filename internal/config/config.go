// Package config loads and layers gitversion configuration.
//
// Every field is a pointer so that an unset value can be told apart from
// a zero value when overrides are merged.
package config

import "github.com/MyCarrier-DevOps/go-gitversion/internal/describe"

// Config is the on-disk configuration.
type Config struct {
	// Prefix restricts the tags considered to those starting with it,
	// e.g. "my-product@".
	Prefix        *string         `yaml:"prefix,omitempty" toml:"prefix,omitempty"`
	Long          *bool           `yaml:"long,omitempty" toml:"long,omitempty"`
	Abbrev        *int            `yaml:"abbrev,omitempty" toml:"abbrev,omitempty"`
	MaxCandidates *int            `yaml:"max-candidates,omitempty" toml:"max-candidates,omitempty"`
	FirstParent   *bool           `yaml:"first-parent,omitempty" toml:"first-parent,omitempty"`
	Model         *describe.Model `yaml:"model,omitempty" toml:"model,omitempty"`

	// Verify cross-checks the search engine against the linear walk.
	Verify *bool `yaml:"verify,omitempty" toml:"verify,omitempty"`

	Verbosity *string `yaml:"verbosity,omitempty" toml:"verbosity,omitempty"`
	LogFile   *string `yaml:"log-file,omitempty" toml:"log-file,omitempty"`

	GitHub GitHubConfig `yaml:"github,omitempty" toml:"github,omitempty"`
}

// GitHubConfig configures the remote backend.
type GitHubConfig struct {
	URL        *string `yaml:"url,omitempty" toml:"url,omitempty"`
	MaxRetries *int    `yaml:"max-retries,omitempty" toml:"max-retries,omitempty"`
}

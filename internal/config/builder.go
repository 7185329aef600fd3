package config

import (
	"fmt"
	"regexp"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/logger"
)

// prefixPattern matches prefixes such as "v-", "my-product@" or "@scope/pkg@".
var prefixPattern = regexp.MustCompile(`^[/@]?([A-Za-z][0-9A-Za-z]*[/@-])+$`)

// Builder constructs a Config by layering overrides on top of defaults.
type Builder struct {
	overrides []*Config
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add adds a configuration override. Later overrides take precedence.
func (b *Builder) Add(override *Config) *Builder {
	if override != nil {
		b.overrides = append(b.overrides, override)
	}
	return b
}

// Build applies all overrides to the defaults and validates the result.
func (b *Builder) Build() (*Config, error) {
	cfg := CreateDefaultConfiguration()

	for _, override := range b.overrides {
		mergeConfig(cfg, override)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig applies non-nil fields from src to dst.
func mergeConfig(dst, src *Config) {
	if src.Prefix != nil {
		dst.Prefix = src.Prefix
	}
	if src.Long != nil {
		dst.Long = src.Long
	}
	if src.Abbrev != nil {
		dst.Abbrev = src.Abbrev
	}
	if src.MaxCandidates != nil {
		dst.MaxCandidates = src.MaxCandidates
	}
	if src.FirstParent != nil {
		dst.FirstParent = src.FirstParent
	}
	if src.Model != nil {
		dst.Model = src.Model
	}
	if src.Verify != nil {
		dst.Verify = src.Verify
	}
	if src.Verbosity != nil {
		dst.Verbosity = src.Verbosity
	}
	if src.LogFile != nil {
		dst.LogFile = src.LogFile
	}
	if src.GitHub.URL != nil {
		dst.GitHub.URL = src.GitHub.URL
	}
	if src.GitHub.MaxRetries != nil {
		dst.GitHub.MaxRetries = src.GitHub.MaxRetries
	}
}

// ValidatePrefix reports whether prefix is usable as a tag prefix. The
// empty prefix is always valid.
func ValidatePrefix(prefix string) error {
	if prefix == "" || prefixPattern.MatchString(prefix) {
		return nil
	}
	return fmt.Errorf("invalid prefix %q: must look like \"v-\", \"name@\" or \"name/\"", prefix)
}

func validate(cfg *Config) error {
	if cfg.Prefix != nil {
		if err := ValidatePrefix(*cfg.Prefix); err != nil {
			return err
		}
	}
	if cfg.Abbrev != nil && (*cfg.Abbrev < describe.MinAbbrev || *cfg.Abbrev > describe.MaxAbbrev) {
		return fmt.Errorf("abbrev %d out of range %d..%d", *cfg.Abbrev, describe.MinAbbrev, describe.MaxAbbrev)
	}
	if cfg.MaxCandidates != nil && (*cfg.MaxCandidates < 1 || *cfg.MaxCandidates > describe.MaxCandidatesLimit) {
		return fmt.Errorf("max-candidates %d out of range 1..%d", *cfg.MaxCandidates, describe.MaxCandidatesLimit)
	}
	if cfg.Verbosity != nil {
		if _, err := logger.ParseVerbosity(*cfg.Verbosity); err != nil {
			return err
		}
	}
	if cfg.GitHub.MaxRetries != nil && *cfg.GitHub.MaxRetries < 0 {
		return fmt.Errorf("github max-retries must not be negative, got %d", *cfg.GitHub.MaxRetries)
	}
	return nil
}

package config

import (
	"log/slog"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/logger"
)

// EffectiveConfiguration holds resolved values with no pointers.
type EffectiveConfiguration struct {
	Prefix           string
	Long             bool
	Abbrev           int
	MaxCandidates    int
	FirstParent      bool
	Model            describe.Model
	Verify           bool
	Verbosity        string
	LogFile          string
	GitHubURL        string
	GitHubMaxRetries int
}

// NewEffectiveConfiguration resolves cfg, falling back to defaults for
// fields left unset.
func NewEffectiveConfiguration(cfg *Config) EffectiveConfiguration {
	defaults := CreateDefaultConfiguration()
	merged := *defaults
	mergeConfig(&merged, cfg)

	return EffectiveConfiguration{
		Prefix:           derefString(merged.Prefix),
		Long:             derefBool(merged.Long),
		Abbrev:           derefInt(merged.Abbrev),
		MaxCandidates:    derefInt(merged.MaxCandidates),
		FirstParent:      derefBool(merged.FirstParent),
		Model:            *merged.Model,
		Verify:           derefBool(merged.Verify),
		Verbosity:        derefString(merged.Verbosity),
		LogFile:          derefString(merged.LogFile),
		GitHubURL:        derefString(merged.GitHub.URL),
		GitHubMaxRetries: derefInt(merged.GitHub.MaxRetries),
	}
}

// DescribeOptions converts the configuration into engine options.
func (ec EffectiveConfiguration) DescribeOptions(log *slog.Logger) []describe.Option {
	return []describe.Option{
		describe.WithPrefix(ec.Prefix),
		describe.WithLong(ec.Long),
		describe.WithAbbrev(ec.Abbrev),
		describe.WithMaxCandidates(ec.MaxCandidates),
		describe.WithFirstParent(ec.FirstParent),
		describe.WithModel(ec.Model),
		describe.WithLogger(log),
	}
}

// LogLevel returns the slog level for Verbosity. Invalid values have
// already been rejected by Build, so they map to info.
func (ec EffectiveConfiguration) LogLevel() slog.Level {
	level, err := logger.ParseVerbosity(ec.Verbosity)
	if err != nil {
		return logger.LevelInfo
	}
	return level
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

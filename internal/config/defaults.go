package config

import "github.com/MyCarrier-DevOps/go-gitversion/internal/describe"

// Default values.
const (
	DefaultMaxRetries = 3
	DefaultVerbosity  = "info"
)

// CreateDefaultConfiguration returns a fully populated Config.
func CreateDefaultConfiguration() *Config {
	model := describe.ModelDevelop
	return &Config{
		Prefix:        stringPtr(""),
		Long:          boolPtr(false),
		Abbrev:        intPtr(describe.DefaultAbbrev),
		MaxCandidates: intPtr(describe.DefaultMaxCandidates),
		FirstParent:   boolPtr(true),
		Model:         &model,
		Verify:        boolPtr(false),
		Verbosity:     stringPtr(DefaultVerbosity),
		LogFile:       stringPtr(""),
		GitHub: GitHubConfig{
			URL:        stringPtr(""),
			MaxRetries: intPtr(DefaultMaxRetries),
		},
	}
}

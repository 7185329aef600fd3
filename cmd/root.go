package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
)

// envPrefix namespaces environment overrides, e.g. GITVERSION_MAX_CANDIDATES.
const envPrefix = "GITVERSION"

// Flags that are also configuration keys. Viper resolves them from the
// command line first, then from the environment.
const (
	keyPrefix        = "prefix"
	keyLong          = "long"
	keyAbbrev        = "abbrev"
	keyMaxCandidates = "max-candidates"
	keyFirstParent   = "first-parent"
	keyModel         = "model"
	keyVerify        = "verify"
	keyVerbosity     = "verbosity"
	keyLogFile       = "log-file"
	keyGitHubURL     = "github-url"
)

// rootOptions holds the flags shared by the root and remote commands.
type rootOptions struct {
	path         string
	config       string
	output       string
	showVariable string
	rev          string
	showConfig   bool
	explain      bool
	describeOnly bool
	timings      bool

	v *viper.Viper
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: newViper()}

	cmd := &cobra.Command{
		Use:   "gitversion",
		Short: "Describe a commit relative to its nearest tag",
		Long: `gitversion names a commit after the nearest reachable tag, the number of
commits since that tag and an abbreviated hash, the way "git describe --tags"
does, and derives version details from it.

Every describe flag can also be set in gitversion.yml or through the
environment, e.g. GITVERSION_PREFIX=my-product@. Flags win over the
environment, which wins over the config file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Default action is describe.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDescribe(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.path, "path", "p", ".", "path to the git repository")
	pf.StringVar(&opts.config, "config", "", "path to config file (default: auto-detect)")
	pf.StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	pf.StringVar(&opts.showVariable, "show-variable", "", "output a single variable (e.g. Version, GitHash)")
	pf.StringVar(&opts.rev, "rev", "", "revision to describe (default: HEAD)")
	pf.BoolVar(&opts.showConfig, "show-config", false, "display the effective configuration and exit")
	pf.BoolVar(&opts.explain, "explain", false, "print the candidate tags on stderr")
	pf.BoolVar(&opts.describeOnly, "describe", false, "print only the describe string")
	pf.BoolVar(&opts.timings, "timings", false, "trace each step and print timings on stderr")

	pf.String(keyPrefix, "", "only consider tags starting with this prefix, e.g. my-product@")
	pf.Bool(keyLong, false, "always render <tag>-<n>-g<hash>, even on a tag")
	pf.Int(keyAbbrev, describe.DefaultAbbrev, "number of hex digits in the abbreviated hash")
	pf.Int(keyMaxCandidates, describe.DefaultMaxCandidates, "number of candidate tags to consider")
	pf.Bool(keyFirstParent, true, "follow only the first parent of merge commits")
	pf.String(keyModel, describe.ModelDevelop.String(), "versioning model: develop or release-branch")
	pf.Bool(keyVerify, false, "cross-check the search against a linear first-parent walk")
	pf.StringP(keyVerbosity, "v", config.DefaultVerbosity, "log verbosity: quiet, info, debug, trace")
	pf.String(keyLogFile, "", "write logs to a rotated file instead of stderr")

	for _, key := range []string{
		keyPrefix, keyLong, keyAbbrev, keyMaxCandidates, keyFirstParent,
		keyModel, keyVerify, keyVerbosity, keyLogFile,
	} {
		_ = opts.v.BindPFlag(key, pf.Lookup(key))
	}

	cmd.AddCommand(newRemoteCmd(opts), newParseCmd(opts), newVersionCmd())
	return cmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// overrides collects the keys set by flag or environment.
func (o *rootOptions) overrides() (*config.Config, error) {
	var cfg config.Config
	v := o.v

	if v.IsSet(keyPrefix) {
		s := v.GetString(keyPrefix)
		cfg.Prefix = &s
	}
	if v.IsSet(keyLong) {
		b := v.GetBool(keyLong)
		cfg.Long = &b
	}
	if v.IsSet(keyAbbrev) {
		n := v.GetInt(keyAbbrev)
		cfg.Abbrev = &n
	}
	if v.IsSet(keyMaxCandidates) {
		n := v.GetInt(keyMaxCandidates)
		cfg.MaxCandidates = &n
	}
	if v.IsSet(keyFirstParent) {
		b := v.GetBool(keyFirstParent)
		cfg.FirstParent = &b
	}
	if v.IsSet(keyModel) {
		m, err := describe.ParseModel(v.GetString(keyModel))
		if err != nil {
			return nil, err
		}
		cfg.Model = &m
	}
	if v.IsSet(keyVerify) {
		b := v.GetBool(keyVerify)
		cfg.Verify = &b
	}
	if v.IsSet(keyVerbosity) {
		s := v.GetString(keyVerbosity)
		cfg.Verbosity = &s
	}
	if v.IsSet(keyLogFile) {
		s := v.GetString(keyLogFile)
		cfg.LogFile = &s
	}
	if v.IsSet(keyGitHubURL) {
		s := v.GetString(keyGitHubURL)
		cfg.GitHub.URL = &s
	}
	return &cfg, nil
}

// loadConfig layers defaults, the config file under dir and overrides.
func (o *rootOptions) loadConfig(dir string) (*config.Config, error) {
	overrides, err := o.overrides()
	if err != nil {
		return nil, err
	}
	return config.Load(dir, o.config, overrides)
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package sdk provides a public Go API for describing commits relative to
// their nearest tag. It supports both local repositories (via go-git) and
// remote GitHub repositories (via the GitHub API).
//
// Basic usage:
//
//	result, err := sdk.Describe(sdk.LocalOptions{
//	    Path: "/path/to/repo",
//	})
//	fmt.Println(result.Variables["Version"]) // "v1.2.0-3-gabc1234"
//
//	result, err := sdk.DescribeRemote(sdk.RemoteOptions{
//	    Owner: "myorg",
//	    Repo:  "myrepo",
//	    Token: os.Getenv("GITHUB_TOKEN"),
//	})
//	fmt.Println(result.Description) // "v1.2.0"
//
// Build tooling that asks for the same version many times should use
// Version, which computes each (work tree, prefix) pair once per process.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/logger"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/output"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/version"

	ghprovider "github.com/MyCarrier-DevOps/go-gitversion/internal/github"
)

// Details is the version information of one described commit.
type Details = version.Details

// LocalOptions configures describing a local git repository.
type LocalOptions struct {
	// Path to the git repository. Defaults to "." if empty.
	Path string

	// Rev is the revision to describe. Empty means HEAD.
	Rev string

	// ConfigPath is the path to a gitversion YAML or TOML config file.
	// If empty, auto-detects gitversion.yml, .github/gitversion.yml or
	// gitversion.toml in the work tree root.
	ConfigPath string

	// Prefix, when non-nil, overrides the configured tag prefix.
	Prefix *string

	// Logger receives engine diagnostics. Nil discards them.
	Logger *slog.Logger

	// Explain populates Result.Explanation.
	Explain bool
}

// RemoteOptions configures describing a repository via the GitHub API.
type RemoteOptions struct {
	// Owner is the GitHub repository owner (required).
	Owner string

	// Repo is the GitHub repository name (required).
	Repo string

	// Token is a GitHub personal access token or GITHUB_TOKEN.
	Token string

	// AppID is the GitHub App ID for app authentication.
	AppID int64

	// AppKeyPath is the path to a GitHub App private key PEM file.
	AppKeyPath string

	// BaseURL is a custom GitHub API base URL for GitHub Enterprise.
	BaseURL string

	// Ref is the git ref to describe: branch, tag, or SHA. Defaults to the
	// repository's default branch.
	Ref string

	// MaxRetries bounds retries of failed API requests. Zero uses the
	// default; negative disables retries.
	MaxRetries int

	// ConfigPath is a local config file path that overrides remote config.
	ConfigPath string

	// Prefix, when non-nil, overrides the configured tag prefix.
	Prefix *string

	// Logger receives engine and transport diagnostics. Nil discards them.
	Logger *slog.Logger

	// Explain populates Result.Explanation.
	Explain bool
}

// Result holds the description and all output variables.
type Result struct {
	// Details is the structured version information.
	Details Details

	// Description is the describe string with the prefix stripped and
	// without the dirty suffix, e.g. "1.2.0-3-gabc1234".
	Description string

	// Variables contains the output variables keyed by name: Version,
	// Describe, LastTag, CommitDistance, GitHash, GitHashFull, BranchName,
	// IsCleanTag and IsDirty.
	Variables map[string]string

	// Explanation is the human-readable candidate listing (same as CLI
	// --explain). Empty when Explain is false.
	Explanation string
}

// Describe describes a commit in a local git repository.
func Describe(opts LocalOptions) (*Result, error) {
	path := opts.Path
	if path == "" {
		path = "."
	}

	repo, err := git.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	cfg, err := config.Load(repo.WorkingDirectory(), opts.ConfigPath, prefixOverride(opts.Prefix))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return run(repo, cfg, opts.Rev, opts.Logger, opts.Explain)
}

// DescribeRemote describes a commit via the GitHub API.
func DescribeRemote(opts RemoteOptions) (*Result, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, errors.New("owner and repo are required")
	}

	maxRetries := opts.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = ghprovider.DefaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}

	client, err := ghprovider.NewClient(ghprovider.ClientConfig{
		Token:      opts.Token,
		AppID:      opts.AppID,
		AppKeyPath: opts.AppKeyPath,
		BaseURL:    opts.BaseURL,
		Owner:      opts.Owner,
		MaxRetries: maxRetries,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}

	var ghOpts []ghprovider.Option
	if opts.Ref != "" {
		ghOpts = append(ghOpts, ghprovider.WithRef(opts.Ref))
	}
	if baseURL := ghprovider.ResolveBaseURL(opts.BaseURL); baseURL != "" {
		ghOpts = append(ghOpts, ghprovider.WithBaseURL(baseURL))
	}
	ghRepo := ghprovider.NewGitHubRepository(client, opts.Owner, opts.Repo, ghOpts...)

	cfg, err := loadRemoteConfig(opts.ConfigPath, ghRepo, prefixOverride(opts.Prefix))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return run(ghRepo, cfg, "", opts.Logger, opts.Explain)
}

// run describes rev and collects the result.
func run(repo git.Repository, cfg *config.Config, rev string, log *slog.Logger, explain bool) (*Result, error) {
	if log == nil {
		log = logger.Discard()
	}
	ec := config.NewEffectiveConfiguration(cfg)

	opts := ec.DescribeOptions(log)
	var engine describe.Engine = describe.New(repo, opts...)
	if ec.Verify {
		if !ec.FirstParent {
			return nil, errors.New("verify requires first-parent")
		}
		engine = describe.Verify(engine, describe.NewLinear(repo, opts...))
	}

	d, err := version.NewLoader(repo, engine, ec.Prefix, version.WithRev(rev)).Load(context.Background())
	if err != nil {
		return nil, err
	}

	vars := output.GetVariables(d)
	result := &Result{
		Details:     d,
		Description: vars[output.VarDescribe],
		Variables:   vars,
	}
	if explain {
		result.Explanation = output.FormatExplanation(d)
	}
	return result, nil
}

func prefixOverride(prefix *string) *config.Config {
	return &config.Config{Prefix: prefix}
}

// loadRemoteConfig loads configuration from a local override or the remote repo.
func loadRemoteConfig(configPath string, ghRepo *ghprovider.GitHubRepository, overrides *config.Config) (*config.Config, error) {
	builder := config.NewBuilder()

	if configPath != "" {
		userCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		builder.Add(userCfg)
	} else {
		for _, name := range config.FileNames {
			name = strings.ReplaceAll(name, "\\", "/")
			content, err := ghRepo.FetchFileContent(name)
			if err != nil {
				if ghprovider.IsNotFoundError(err) {
					continue
				}
				return nil, fmt.Errorf("fetching remote config %s: %w", name, err)
			}
			parse := config.LoadFromBytes
			if strings.HasSuffix(name, ".toml") {
				parse = config.LoadFromTOML
			}
			userCfg, err := parse([]byte(content))
			if err != nil {
				return nil, fmt.Errorf("parsing remote config %s: %w", name, err)
			}
			builder.Add(userCfg)
			break
		}
	}

	return builder.Add(overrides).Build()
}

var service = version.NewService()

// Version returns the version string of the local repository containing
// path, considering only tags that start with prefix. Results are computed
// once per work tree and prefix for the life of the process, so concurrent
// build steps share a single describe.
func Version(ctx context.Context, path, prefix string) (string, error) {
	if err := config.ValidatePrefix(prefix); err != nil {
		return "", err
	}
	return service.Version(ctx, path, prefix)
}

// Forget drops the memoized version of path and prefix, e.g. after
// creating a new tag.
func Forget(path, prefix string) {
	service.Forget(path, prefix)
}

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	ghprovider "github.com/MyCarrier-DevOps/go-gitversion/internal/github"
)

type remoteOptions struct {
	*rootOptions

	token            string
	appID            int64
	appKeyPath       string
	ref              string
	remoteConfigPath string
}

func newRemoteCmd(root *rootOptions) *cobra.Command {
	opts := &remoteOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "remote owner/repo",
		Short: "Describe a GitHub repository via API",
		Long: `Describe a commit by reading tags and history from the GitHub API.
No local clone is required.

Authentication (checked in order):
  1. --token flag or GITHUB_TOKEN env var
  2. --github-app-id + --github-app-key-path or GH_APP_ID + GH_APP_PRIVATE_KEY env vars

Examples:
  GITHUB_TOKEN=ghp_xxx gitversion remote myorg/myrepo
  gitversion remote myorg/myrepo --token ghp_xxx --ref main --prefix my-product@
  gitversion remote myorg/myrepo --github-app-id 12345 --github-app-key-path /path/to/key.pem`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemote(cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.token, "token", "", "GitHub token (or set GITHUB_TOKEN env var)")
	f.Int64Var(&opts.appID, "github-app-id", 0, "GitHub App ID (or set GH_APP_ID env var)")
	f.StringVar(&opts.appKeyPath, "github-app-key-path", "", "path to GitHub App private key PEM file (or set GH_APP_PRIVATE_KEY env var)")
	f.StringVar(&opts.ref, "ref", "", "git ref to describe: branch, tag, or SHA (default: repo default branch)")
	f.StringVar(&opts.remoteConfigPath, "remote-config-path", "", "path to config file in the remote repo (e.g. .github/gitversion.yml)")
	f.String(keyGitHubURL, "", "GitHub API base URL for GitHub Enterprise (or set GITHUB_API_URL env var)")
	_ = root.v.BindPFlag(keyGitHubURL, f.Lookup(keyGitHubURL))

	return cmd
}

func runRemote(cmd *cobra.Command, opts *remoteOptions, target string) error {
	owner, repo, err := parseOwnerRepo(target)
	if err != nil {
		return err
	}

	overrides, err := opts.overrides()
	if err != nil {
		return err
	}

	// The local layer decides how to reach GitHub.
	local, err := opts.localConfig(overrides)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	localEC := config.NewEffectiveConfiguration(local)

	log, closer := newLogger(cmd.ErrOrStderr(), localEC)
	defer closer.Close()

	baseURL := ghprovider.ResolveBaseURL(localEC.GitHubURL)
	client, err := ghprovider.NewClient(ghprovider.ClientConfig{
		Token:      opts.token,
		AppID:      opts.appID,
		AppKeyPath: opts.appKeyPath,
		BaseURL:    baseURL,
		Owner:      owner,
		MaxRetries: localEC.GitHubMaxRetries,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("creating GitHub client: %w", err)
	}

	repoOpts := []ghprovider.Option{ghprovider.WithContext(cmd.Context())}
	if opts.ref != "" {
		repoOpts = append(repoOpts, ghprovider.WithRef(opts.ref))
	}
	if baseURL != "" {
		repoOpts = append(repoOpts, ghprovider.WithBaseURL(baseURL))
	}
	ghRepo := ghprovider.NewGitHubRepository(client, owner, repo, repoOpts...)

	cfg := local
	if opts.config == "" {
		cfg, err = loadRemoteConfig(ghRepo, opts.remoteConfigPath, overrides)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}

	if opts.showConfig {
		return showConfig(cmd.OutOrStdout(), cfg)
	}

	return opts.describe(cmd, ghRepo, config.NewEffectiveConfiguration(cfg), log)
}

func parseOwnerRepo(s string) (string, string, error) {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format %q, expected owner/repo", s)
	}
	return parts[0], parts[1], nil
}

// localConfig layers defaults, an explicit --config file and overrides.
// Files in the current directory are not consulted: they belong to some
// other repository.
func (o *remoteOptions) localConfig(overrides *config.Config) (*config.Config, error) {
	b := config.NewBuilder()
	if o.config != "" {
		cfg, err := config.LoadFromFile(o.config)
		if err != nil {
			return nil, err
		}
		b.Add(cfg)
	}
	return b.Add(overrides).Build()
}

// loadRemoteConfig fetches configuration from the remote repo: path when
// given, otherwise the first of config.FileNames that exists.
func loadRemoteConfig(ghRepo *ghprovider.GitHubRepository, path string, overrides *config.Config) (*config.Config, error) {
	builder := config.NewBuilder()

	names := []string{path}
	if path == "" {
		names = names[:0]
		for _, name := range config.FileNames {
			names = append(names, filepath.ToSlash(name))
		}
	}

	for _, name := range names {
		content, err := ghRepo.FetchFileContent(name)
		if err != nil {
			// 404 means the file doesn't exist, so try the next name.
			// Anything else (auth, rate limit, network) must not be ignored.
			if path == "" && ghprovider.IsNotFoundError(err) {
				continue
			}
			return nil, fmt.Errorf("fetching remote config %s: %w", name, err)
		}

		var remoteCfg *config.Config
		if strings.HasSuffix(name, ".toml") {
			remoteCfg, err = config.LoadFromTOML([]byte(content))
		} else {
			remoteCfg, err = config.LoadFromBytes([]byte(content))
		}
		if err != nil {
			return nil, fmt.Errorf("parsing remote config %s: %w", name, err)
		}
		builder.Add(remoteCfg)
		break
	}

	return builder.Add(overrides).Build()
}

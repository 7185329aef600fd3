// Package github implements git.Repository over the GitHub REST and
// GraphQL APIs, so a repository can be described without a clone.
package github

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	gh "github.com/google/go-github/v68/github"
)

// Compile-time check that GitHubRepository implements git.Repository.
var _ git.Repository = (*GitHubRepository)(nil)

const defaultHistoryBatch = 100

// GitHubRepository implements git.Repository using the GitHub API.
type GitHubRepository struct {
	client  *gh.Client
	owner   string
	repo    string
	ref     string // target ref (branch name, tag, or SHA)
	baseURL string // custom API base URL for GHE
	cache   *apiCache
	ctx     context.Context

	// historyBatch is the number of commits prefetched per GraphQL history
	// request. Zero loads commits one by one over REST.
	historyBatch int
}

// Option configures a GitHubRepository.
type Option func(*GitHubRepository)

// WithRef sets the target ref for HEAD resolution.
func WithRef(ref string) Option {
	return func(r *GitHubRepository) { r.ref = ref }
}

// WithBaseURL sets the GitHub API base URL for GitHub Enterprise.
func WithBaseURL(url string) Option {
	return func(r *GitHubRepository) { r.baseURL = url }
}

// WithContext sets the context used for API requests.
func WithContext(ctx context.Context) Option {
	return func(r *GitHubRepository) { r.ctx = ctx }
}

// WithHistoryBatch sets how many commits are prefetched per request.
func WithHistoryBatch(n int) Option {
	return func(r *GitHubRepository) { r.historyBatch = max(n, 0) }
}

// NewGitHubRepository creates a new GitHubRepository.
func NewGitHubRepository(client *gh.Client, owner, repo string, opts ...Option) *GitHubRepository {
	r := &GitHubRepository{
		client:       client,
		owner:        owner,
		repo:         repo,
		cache:        newCache(),
		ctx:          context.Background(),
		historyBatch: defaultHistoryBatch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *GitHubRepository) Path() string {
	return fmt.Sprintf("github.com/%s/%s", r.owner, r.repo)
}

func (r *GitHubRepository) WorkingDirectory() string {
	return ""
}

var hexPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// IsHeadDetached reports whether the configured ref is something other
// than a branch: a SHA or a tag. Without a ref HEAD is the default branch.
func (r *GitHubRepository) IsHeadDetached() bool {
	if r.ref == "" {
		return false
	}
	if hexPattern.MatchString(r.ref) {
		return true
	}
	head, err := r.Head()
	return err == nil && head.IsDetachedHead
}

// headRef returns the configured ref, or the default branch.
func (r *GitHubRepository) headRef() (string, error) {
	if r.ref != "" {
		return r.ref, nil
	}
	repoInfo, _, err := r.client.Repositories.Get(r.ctx, r.owner, r.repo)
	if err != nil {
		return "", fmt.Errorf("getting repository info: %w", err)
	}
	return repoInfo.GetDefaultBranch(), nil
}

func (r *GitHubRepository) Head() (git.Branch, error) {
	if branch, ok := r.cache.getHead(); ok {
		return *branch, nil
	}

	ref, err := r.headRef()
	if err != nil {
		return git.Branch{}, err
	}

	if hexPattern.MatchString(ref) {
		return r.detachedHead(ref)
	}

	ghBranch, _, err := r.client.Repositories.GetBranch(r.ctx, r.owner, r.repo, ref, 0)
	if err != nil {
		switch {
		case r.ref == "" && IsNotFoundError(err):
			// The default branch has no commits yet.
			return git.Branch{}, git.ErrEmptyRepository
		case IsNotFoundError(err):
			// A tag or an abbreviated SHA.
			return r.detachedHead(ref)
		}
		return git.Branch{}, fmt.Errorf("getting branch %s: %w", ref, err)
	}

	tipCommit := convertGitHubRepoCommit(ghBranch.GetCommit())
	r.cache.putCommit(tipCommit)

	branch := git.Branch{
		Name: git.NewBranchReferenceName(ref),
		Tip:  &tipCommit,
	}
	r.cache.putHead(branch)
	return branch, nil
}

// detachedHead resolves rev to a commit and caches it as a detached HEAD.
func (r *GitHubRepository) detachedHead(rev string) (git.Branch, error) {
	sha := rev
	if !hexPattern.MatchString(rev) {
		var err error
		if sha, err = r.Resolve(rev); err != nil {
			return git.Branch{}, err
		}
	}
	commit, err := r.CommitFromSha(sha)
	if err != nil {
		return git.Branch{}, fmt.Errorf("getting HEAD commit: %w", err)
	}
	branch := git.Branch{
		Name:           git.NewReferenceName(git.HeadRef),
		Tip:            &commit,
		IsDetachedHead: true,
	}
	r.cache.putHead(branch)
	return branch, nil
}

// Resolve resolves rev through the commits endpoint, which peels
// annotated tags. "" and HEAD resolve the configured ref.
func (r *GitHubRepository) Resolve(rev string) (string, error) {
	if rev == "" || rev == git.HeadRef {
		ref, err := r.headRef()
		if err != nil {
			return "", err
		}
		rev = ref
	}
	if sha, ok := r.cache.getRef(rev); ok {
		return sha, nil
	}

	sha, _, err := r.client.Repositories.GetCommitSHA1(r.ctx, r.owner, r.repo, rev, "")
	if err != nil {
		switch statusCode(err) {
		case http.StatusNotFound, http.StatusUnprocessableEntity:
			return "", fmt.Errorf("resolving %s: %w", rev, git.ErrRefNotFound)
		case http.StatusConflict:
			// GitHub answers 409 for repositories without commits.
			return "", git.ErrEmptyRepository
		}
		return "", fmt.Errorf("resolving %s: %w", rev, err)
	}

	r.cache.putRef(rev, sha)
	return sha, nil
}

func (r *GitHubRepository) Tags() ([]git.Tag, error) {
	if tags, ok := r.cache.getTags(); ok {
		return tags, nil
	}

	tags, err := r.fetchAllTagsGraphQL()
	if err != nil {
		return nil, err
	}

	r.cache.putTags(tags)
	return tags, nil
}

// CommitFromSha returns a cached commit, prefetching a page of history
// over GraphQL on a miss and falling back to REST.
func (r *GitHubRepository) CommitFromSha(sha string) (git.Commit, error) {
	if commit, ok := r.cache.getCommit(sha); ok {
		return commit, nil
	}

	if r.historyBatch > 0 {
		if found, err := r.fetchHistoryGraphQL(sha); err == nil && found {
			commit, _ := r.cache.getCommit(sha)
			return commit, nil
		}
	}

	ghCommit, _, err := r.client.Repositories.GetCommit(r.ctx, r.owner, r.repo, sha, nil)
	if err != nil {
		return git.Commit{}, fmt.Errorf("getting commit %s: %w", sha, err)
	}

	commit := convertGitHubRepoCommit(ghCommit)
	r.cache.putCommit(commit)
	return commit, nil
}

// NumberOfUncommittedChanges is always zero: there is no work tree.
func (r *GitHubRepository) NumberOfUncommittedChanges() (int, error) {
	return 0, nil
}

// FetchFileContent fetches a file's content at the configured ref. Used
// to load configuration from the remote repository.
func (r *GitHubRepository) FetchFileContent(path string) (string, error) {
	opts := &gh.RepositoryContentGetOptions{}
	if r.ref != "" {
		opts.Ref = r.ref
	}

	content, _, _, err := r.client.Repositories.GetContents(r.ctx, r.owner, r.repo, path, opts)
	if err != nil {
		return "", fmt.Errorf("fetching file %s: %w", path, err)
	}
	if content == nil {
		return "", fmt.Errorf("file %s not found", path)
	}

	decoded, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding file content: %w", err)
	}
	return decoded, nil
}

// convertGitHubRepoCommit converts a GitHub API RepositoryCommit to a git.Commit.
func convertGitHubRepoCommit(ghCommit *gh.RepositoryCommit) git.Commit {
	if ghCommit == nil {
		return git.Commit{}
	}

	var parents []string
	for _, p := range ghCommit.Parents {
		parents = append(parents, p.GetSHA())
	}

	var when time.Time
	var message string
	if ghCommit.Commit != nil {
		if ghCommit.Commit.Committer != nil && ghCommit.Commit.Committer.Date != nil {
			when = ghCommit.Commit.Committer.Date.Time.UTC()
		}
		message = ghCommit.Commit.GetMessage()
	}

	return git.Commit{
		Sha:     ghCommit.GetSHA(),
		Parents: parents,
		When:    when,
		Message: message,
	}
}

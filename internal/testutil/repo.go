// Package testutil provides helpers for creating temporary git repositories
// and in-memory commit graphs for testing.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gogitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	branchRefPrefix = "refs/heads/"
	tagRefPrefix    = "refs/tags/"
)

// TestRepo builds a real on-disk repository for tests that go through
// go-git: tags, branches, merges and a work tree that can be made dirty.
type TestRepo struct {
	t     testing.TB
	path  string
	repo  *gogit.Repository
	clock time.Time
	seq   int
}

// NewTestRepo initializes an empty repository in a temporary directory.
func NewTestRepo(t testing.TB) *TestRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	return &TestRepo{
		t:     t,
		path:  dir,
		repo:  repo,
		clock: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Path returns the repository root directory.
func (r *TestRepo) Path() string {
	return r.path
}

func (r *TestRepo) check(err error, format string, args ...interface{}) {
	r.t.Helper()
	if err != nil {
		r.t.Fatalf(format+": %v", append(args, err)...)
	}
}

func signature(when time.Time) *object.Signature {
	return &object.Signature{Name: "Test", Email: "test@example.com", When: when}
}

// commit writes a fresh file and commits it one minute after the previous
// commit. With no parents go-git uses HEAD.
func (r *TestRepo) commit(message string, parents ...plumbing.Hash) string {
	r.t.Helper()
	r.clock = r.clock.Add(time.Minute)
	r.seq++

	wt, err := r.repo.Worktree()
	r.check(err, "opening work tree")

	name := fmt.Sprintf("change-%03d.txt", r.seq)
	r.check(os.WriteFile(filepath.Join(r.path, name), []byte(message), 0o644), "writing %s", name)
	_, err = wt.Add(name)
	r.check(err, "staging %s", name)

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author:  signature(r.clock),
		Parents: parents,
	})
	r.check(err, "committing %q", message)
	return hash.String()
}

// AddCommit commits a new file on the current branch and returns its SHA.
func (r *TestRepo) AddCommit(message string) string {
	r.t.Helper()
	return r.commit(message)
}

// MergeCommit commits on top of HEAD with otherSha as second parent.
func (r *TestRepo) MergeCommit(message, otherSha string) string {
	r.t.Helper()
	head, err := r.repo.Head()
	r.check(err, "reading HEAD")
	return r.commit(message, head.Hash(), plumbing.NewHash(otherSha))
}

func (r *TestRepo) setRef(name, sha string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), plumbing.NewHash(sha))
	r.check(r.repo.Storer.SetReference(ref), "setting %s", name)
}

// CreateTag points a lightweight tag at sha.
func (r *TestRepo) CreateTag(name, sha string) {
	r.t.Helper()
	r.setRef(tagRefPrefix+name, sha)
}

// CreateAnnotatedTag tags sha one second after the last commit or tag.
func (r *TestRepo) CreateAnnotatedTag(name, sha, message string) {
	r.t.Helper()
	r.clock = r.clock.Add(time.Second)
	r.CreateAnnotatedTagAt(name, sha, message, r.clock)
}

// CreateAnnotatedTagAt tags sha with an explicit tagger time.
func (r *TestRepo) CreateAnnotatedTagAt(name, sha, message string, when time.Time) {
	r.t.Helper()
	_, err := r.repo.CreateTag(name, plumbing.NewHash(sha), &gogit.CreateTagOptions{
		Tagger:  signature(when),
		Message: message,
	})
	r.check(err, "creating annotated tag %s", name)
}

// CreateBranch points a new branch at sha. HEAD does not move.
func (r *TestRepo) CreateBranch(name, sha string) {
	r.t.Helper()
	r.setRef(branchRefPrefix+name, sha)

	cfg, err := r.repo.Config()
	r.check(err, "reading config")
	cfg.Branches[name] = &gogitconfig.Branch{
		Name:  name,
		Merge: plumbing.NewBranchReferenceName(name),
	}
	r.check(r.repo.SetConfig(cfg), "saving config")
}

func (r *TestRepo) checkout(target string, opts *gogit.CheckoutOptions) {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	r.check(err, "opening work tree")
	r.check(wt.Checkout(opts), "checking out %s", target)
}

// Checkout switches HEAD to branch.
func (r *TestRepo) Checkout(branch string) {
	r.t.Helper()
	r.checkout(branch, &gogit.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch)})
}

// CheckoutDetached moves HEAD to sha without a branch.
func (r *TestRepo) CheckoutDetached(sha string) {
	r.t.Helper()
	r.checkout(sha, &gogit.CheckoutOptions{Hash: plumbing.NewHash(sha)})
}

// MakeDirty leaves an untracked file in the work tree.
func (r *TestRepo) MakeDirty() {
	r.t.Helper()
	r.WriteFile("dirty.txt", "dirty")
}

// WriteConfig writes gitversion.yml at the repository root without
// committing it.
func (r *TestRepo) WriteConfig(content string) {
	r.t.Helper()
	r.WriteFile("gitversion.yml", content)
}

// WriteFile writes an uncommitted file relative to the repository root.
func (r *TestRepo) WriteFile(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.path, name)
	r.check(os.MkdirAll(filepath.Dir(path), 0o755), "creating directory for %s", name)
	r.check(os.WriteFile(path, []byte(content), 0o644), "writing %s", name)
}

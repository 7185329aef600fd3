package testutil

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// Graph is an in-memory commit graph. Repository returns a
// git.MockRepository backed by it, so engine tests can build exact
// topologies without touching disk.
type Graph struct {
	commits map[string]git.Commit
	tags    []git.Tag
	head    string
	branch  string
	dirty   int
	clock   time.Time
	seq     int
}

// NewGraph creates an empty graph. HEAD follows the most recent commit
// until SetHead is called.
func NewGraph() *Graph {
	return &Graph{
		commits: make(map[string]git.Commit),
		branch:  "main",
		clock:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Commit adds a commit with the given parents (first parent first), one
// minute after the previous commit, and moves HEAD to it.
func (g *Graph) Commit(parents ...string) string {
	g.clock = g.clock.Add(time.Minute)
	return g.CommitAt(g.clock, parents...)
}

// CommitAt adds a commit with an explicit committer time.
func (g *Graph) CommitAt(when time.Time, parents ...string) string {
	g.seq++
	sha := fakeSha(fmt.Sprintf("commit-%d", g.seq))
	g.commits[sha] = git.Commit{
		Sha:     sha,
		Parents: append([]string(nil), parents...),
		When:    when,
		Message: fmt.Sprintf("commit %d", g.seq),
	}
	g.head = sha
	return sha
}

// Chain adds n commits, each the first-parent child of the previous one,
// starting from parent ("" for a new root). It returns the SHAs in order.
func (g *Graph) Chain(parent string, n int) []string {
	shas := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if parent == "" {
			parent = g.Commit()
		} else {
			parent = g.Commit(parent)
		}
		shas = append(shas, parent)
	}
	return shas
}

// Tag adds a lightweight tag.
func (g *Graph) Tag(name, sha string) {
	g.tags = append(g.tags, git.Tag{
		Name:      git.NewTagReferenceName(name),
		TargetSha: sha,
		CommitSha: sha,
	})
}

// AnnotatedTag adds an annotated tag with the given tagger time.
func (g *Graph) AnnotatedTag(name, sha string, when time.Time) {
	g.tags = append(g.tags, git.Tag{
		Name:       git.NewTagReferenceName(name),
		TargetSha:  fakeSha("tag-" + name),
		CommitSha:  sha,
		Annotated:  true,
		TaggerWhen: &when,
	})
}

// SetHead moves HEAD to sha.
func (g *Graph) SetHead(sha string) {
	g.head = sha
}

// Detach marks HEAD as detached.
func (g *Graph) Detach() {
	g.branch = ""
}

// SetDirty sets the number of uncommitted changes reported.
func (g *Graph) SetDirty(n int) {
	g.dirty = n
}

// Repository returns a mock repository serving this graph.
func (g *Graph) Repository() *git.MockRepository {
	return &git.MockRepository{
		PathFunc:             func() string { return "/graph/.git" },
		WorkingDirectoryFunc: func() string { return "/graph" },
		IsHeadDetachedFunc:   func() bool { return g.branch == "" },
		HeadFunc:             g.headBranch,
		ResolveFunc:          g.resolve,
		CommitFromShaFunc:    g.commitFromSha,
		TagsFunc: func() ([]git.Tag, error) {
			return append([]git.Tag(nil), g.tags...), nil
		},
		NumberOfUncommittedChangesFunc: func() (int, error) { return g.dirty, nil },
	}
}

func (g *Graph) headBranch() (git.Branch, error) {
	if g.head == "" {
		return git.Branch{}, git.ErrEmptyRepository
	}
	tip := g.commits[g.head]
	if g.branch == "" {
		return git.Branch{Name: git.NewReferenceName(git.HeadRef), Tip: &tip, IsDetachedHead: true}, nil
	}
	return git.Branch{Name: git.NewBranchReferenceName(g.branch), Tip: &tip}, nil
}

func (g *Graph) resolve(rev string) (string, error) {
	if rev == "" || rev == git.HeadRef {
		if g.head == "" {
			return "", git.ErrEmptyRepository
		}
		return g.head, nil
	}
	if _, ok := g.commits[rev]; ok {
		return rev, nil
	}
	for _, t := range g.tags {
		if t.Name.Friendly == rev {
			return t.Peeled(), nil
		}
	}
	return "", fmt.Errorf("resolving %s: %w", rev, git.ErrRefNotFound)
}

func (g *Graph) commitFromSha(sha string) (git.Commit, error) {
	c, ok := g.commits[sha]
	if !ok {
		return git.Commit{}, fmt.Errorf("loading commit %s: object not found", sha)
	}
	return c, nil
}

func fakeSha(seed string) string {
	sum := sha1.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])
}

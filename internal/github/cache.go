package github

import (
	"sync"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// store is a map guarded by an RWMutex. Describe walks read far more
// often than they write.
type store[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func newStore[K comparable, V any]() *store[K, V] {
	return &store[K, V]{m: make(map[K]V)}
}

func (s *store[K, V]) get(k K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[k]
	return v, ok
}

func (s *store[K, V]) put(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[k] = v
}

// Single-entry keys.
const (
	keyTags = "tags"
	keyHead = "head"
)

// apiCache holds API responses for the lifetime of one GitHubRepository.
// Commits are immutable, so entries never expire. Tags and HEAD are read
// once per describe.
type apiCache struct {
	commits *store[string, git.Commit] // sha → commit
	refs    *store[string, string]     // rev → sha
	tags    *store[string, []git.Tag]
	head    *store[string, git.Branch]
}

func newCache() *apiCache {
	return &apiCache{
		commits: newStore[string, git.Commit](),
		refs:    newStore[string, string](),
		tags:    newStore[string, []git.Tag](),
		head:    newStore[string, git.Branch](),
	}
}

func (c *apiCache) getTags() ([]git.Tag, bool) { return c.tags.get(keyTags) }
func (c *apiCache) putTags(tags []git.Tag) { c.tags.put(keyTags, tags) }

func (c *apiCache) getCommit(sha string) (git.Commit, bool) { return c.commits.get(sha) }
func (c *apiCache) putCommit(commit git.Commit) { c.commits.put(commit.Sha, commit) }

func (c *apiCache) getRef(rev string) (string, bool) { return c.refs.get(rev) }
func (c *apiCache) putRef(rev, sha string) { c.refs.put(rev, sha) }

func (c *apiCache) getHead() (*git.Branch, bool) {
	b, ok := c.head.get(keyHead)
	if !ok {
		return nil, false
	}
	return &b, true
}

func (c *apiCache) putHead(branch git.Branch) { c.head.put(keyHead, branch) }

package describe

import (
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// TagIndex maps a commit SHA to the single tag that describes it.
type TagIndex map[string]git.Tag

// NewTagIndex builds an index over tags whose friendly name starts with
// prefix. When several tags land on one commit, CompareTags picks the
// winner and the rest are dropped.
func NewTagIndex(tags []git.Tag, prefix string) TagIndex {
	idx := make(TagIndex, len(tags))
	for _, t := range tags {
		if !strings.HasPrefix(t.Name.Friendly, prefix) {
			continue
		}
		sha := t.Peeled()
		if sha == "" {
			continue
		}
		if cur, ok := idx[sha]; ok && CompareTags(cur, t) <= 0 {
			continue
		}
		idx[sha] = t
	}
	return idx
}

// Lookup returns the tag for sha, if any.
func (idx TagIndex) Lookup(sha string) (git.Tag, bool) {
	t, ok := idx[sha]
	return t, ok
}

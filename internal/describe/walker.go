package describe

import (
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// FirstParentWalker yields the first-parent ancestry of a commit, starting
// with the commit itself and ending at a root. It loads one commit per
// call to Next and cannot be rewound; create a new walker to restart.
//
//	w := NewFirstParentWalker(repo, sha)
//	for w.Next() {
//		c := w.Commit()
//	}
//	if err := w.Err(); err != nil { ... }
type FirstParentWalker struct {
	repo    git.Repository
	next    string
	current git.Commit
	err     error
}

// NewFirstParentWalker creates a walker starting at sha.
func NewFirstParentWalker(repo git.Repository, sha string) *FirstParentWalker {
	return &FirstParentWalker{repo: repo, next: sha}
}

// Next advances to the next commit. It returns false at the end of history
// or after a provider failure.
func (w *FirstParentWalker) Next() bool {
	if w.err != nil || w.next == "" {
		return false
	}

	c, err := w.repo.CommitFromSha(w.next)
	if err != nil {
		w.err = &GraphError{Sha: w.next, Err: err}
		w.next = ""
		return false
	}

	w.current = c
	w.next = c.FirstParent()
	return true
}

// Commit returns the commit at the current position.
func (w *FirstParentWalker) Commit() git.Commit {
	return w.current
}

// Err returns the first error encountered, if any.
func (w *FirstParentWalker) Err() error {
	return w.err
}

package git

import "errors"

var (
	// ErrRefNotFound is returned by Resolve when a rev does not name a commit.
	ErrRefNotFound = errors.New("reference not found")

	// ErrEmptyRepository is returned by Resolve when HEAD is unborn.
	ErrEmptyRepository = errors.New("repository has no commits")
)

// Repository provides read-only access to a commit graph and its refs.
// This is the key abstraction point for testing and backend swapping.
type Repository interface {
	// Path returns the path (or remote identifier) of the repository.
	Path() string

	// WorkingDirectory returns the path to the working directory, or ""
	// for repositories without one.
	WorkingDirectory() string

	// IsHeadDetached returns true if HEAD is not pointing to a branch.
	IsHeadDetached() bool

	// Head returns the current HEAD branch.
	Head() (Branch, error)

	// Resolve resolves a rev (HEAD, branch, tag or SHA) to a commit SHA.
	// Annotated tags are peeled to their commit.
	Resolve(rev string) (string, error)

	// CommitFromSha returns the commit with the given SHA.
	CommitFromSha(sha string) (Commit, error)

	// Tags returns all refs in the tag namespace, peeled, with their
	// annotation flag and tagger time.
	Tags() ([]Tag, error)

	// NumberOfUncommittedChanges returns the count of uncommitted changes
	// in the working directory.
	NumberOfUncommittedChanges() (int, error)
}

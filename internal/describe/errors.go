package describe

import (
	"errors"
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// ErrInconsistentResult is returned by a verifying engine when two
// implementations disagree on the same input.
var ErrInconsistentResult = errors.New("describe implementations disagree")

// RefNotFoundError reports a rev that does not resolve to a commit.
type RefNotFoundError struct {
	Rev string
	Err error
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("rev %q not found: %v", e.Rev, e.Err)
}

// Unwrap lets errors.Is match git.ErrRefNotFound.
func (e *RefNotFoundError) Unwrap() error {
	if e.Err == nil {
		return git.ErrRefNotFound
	}
	return e.Err
}

// GraphError reports a provider failure while loading commit or tag data.
// Sha is empty when the failure was not tied to a single commit.
type GraphError struct {
	Sha string
	Err error
}

func (e *GraphError) Error() string {
	if e.Sha == "" {
		return fmt.Sprintf("reading commit graph: %v", e.Err)
	}
	return fmt.Sprintf("reading commit %s: %v", git.Abbreviate(e.Sha, 7), e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

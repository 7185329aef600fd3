// Package version turns a describe result into version details and
// memoizes them per repository and tag prefix.
package version

import (
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

const (
	// Unspecified is the version reported for a repository with no commits.
	Unspecified = "unspecified"

	// DirtySuffix is appended to the version when the work tree has
	// uncommitted changes.
	DirtySuffix = ".dirty"

	hashLength = 10
)

// Details describes the checked out state of a repository.
type Details struct {
	// Description is the describe output with the tag prefix removed.
	Description describe.Description

	// Empty is true when the repository has no commits.
	Empty bool

	// Clean is true when the work tree has no uncommitted changes.
	Clean bool

	// Branch is the checked out branch, "" when HEAD is detached.
	Branch string

	// Sha is the full SHA of the described commit.
	Sha string

	// Candidates are the tags the engine weighed, for explain output.
	Candidates []describe.Candidate
}

// Version returns the describe string, with DirtySuffix when the work tree
// is dirty, or Unspecified for an empty repository.
func (d Details) Version() string {
	if d.Empty || d.Description.IsEmpty() {
		return Unspecified
	}
	if !d.Clean {
		return d.Description.String() + DirtySuffix
	}
	return d.Description.String()
}

// IsCleanTag reports whether HEAD sits exactly on a tag with a clean work tree.
func (d Details) IsCleanTag() bool {
	return d.Clean && d.Description.IsPlainTag()
}

// CommitDistance returns the number of commits since the last tag.
func (d Details) CommitDistance() int {
	return d.Description.Distance
}

// LastTag returns the nearest tag with the prefix removed, "" when none.
func (d Details) LastTag() string {
	return d.Description.Tag
}

// GitHash returns the first 10 characters of the commit SHA.
func (d Details) GitHash() string {
	return git.Abbreviate(d.Sha, hashLength)
}

// GitHashFull returns the full commit SHA.
func (d Details) GitHashFull() string {
	return d.Sha
}

// BranchName returns the checked out branch, "" when detached.
func (d Details) BranchName() string {
	return d.Branch
}

func (d Details) String() string {
	return fmt.Sprintf("VersionDetails(%s, %s, %s, %s, %t)",
		d.Version(), d.GitHash(), d.GitHashFull(), d.BranchName(), d.IsCleanTag())
}

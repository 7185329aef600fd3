// Package git provides the commit-graph abstraction consumed by the describe
// engine. It defines concrete entity types (Commit, Branch, Tag), the
// Repository interface and a go-git backed implementation.
package git

import (
	"strings"
	"time"
)

const (
	localBranchPrefix = "refs/heads/"
	tagRefPrefix      = "refs/tags/"

	// HeadRef is the symbolic ref describing the checked out commit.
	HeadRef = "HEAD"
)

// Commit represents a git commit.
type Commit struct {
	Sha     string
	Parents []string // parent SHAs; the first element is the first parent
	When    time.Time
	Message string
}

// FirstParent returns the first parent SHA, or "" for a root commit.
func (c Commit) FirstParent() string {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// ShortSha returns the first 7 characters of the SHA.
func (c Commit) ShortSha() string {
	return Abbreviate(c.Sha, 7)
}

// IsEmpty returns true if the commit has no SHA (zero value).
func (c Commit) IsEmpty() bool {
	return c.Sha == ""
}

// Abbreviate returns the first n characters of sha, or sha itself when it
// is shorter than n.
func Abbreviate(sha string, n int) string {
	if n <= 0 || n >= len(sha) {
		return sha
	}
	return sha[:n]
}

// ReferenceName represents a git reference with canonical and friendly forms.
type ReferenceName struct {
	Canonical string // e.g., "refs/heads/main"
	Friendly  string // e.g., "main"
}

// NewReferenceName creates a ReferenceName from a canonical ref path.
// Branch and tag prefixes are stripped from the friendly form.
func NewReferenceName(canonical string) ReferenceName {
	friendly := canonical
	for _, prefix := range []string{localBranchPrefix, tagRefPrefix} {
		if strings.HasPrefix(canonical, prefix) {
			friendly = canonical[len(prefix):]
			break
		}
	}
	return ReferenceName{Canonical: canonical, Friendly: friendly}
}

// NewBranchReferenceName creates a ReferenceName for a local branch.
func NewBranchReferenceName(name string) ReferenceName {
	return NewReferenceName(localBranchPrefix + name)
}

// NewTagReferenceName creates a ReferenceName for a tag.
func NewTagReferenceName(name string) ReferenceName {
	return NewReferenceName(tagRefPrefix + name)
}

// Branch represents the checked out branch (or a detached HEAD).
type Branch struct {
	Name           ReferenceName
	Tip            *Commit
	IsDetachedHead bool
}

// FriendlyName returns the friendly name of the branch.
func (b Branch) FriendlyName() string {
	return b.Name.Friendly
}

// Tag represents a ref in the tag namespace.
type Tag struct {
	Name ReferenceName

	// TargetSha is the object the ref points at: the tag object for an
	// annotated tag, the commit for a lightweight tag.
	TargetSha string

	// CommitSha is the peeled commit. Empty means TargetSha is the commit.
	CommitSha string

	// Annotated is true when the ref points at a tag object.
	Annotated bool

	// TaggerWhen is the annotation timestamp, nil when unavailable.
	TaggerWhen *time.Time
}

// Peeled returns the SHA of the commit this tag describes.
func (t Tag) Peeled() string {
	if t.CommitSha != "" {
		return t.CommitSha
	}
	return t.TargetSha
}

// String returns the friendly tag name.
func (t Tag) String() string {
	return t.Name.Friendly
}

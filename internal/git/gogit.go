package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Compile-time check that GoGitRepository implements Repository.
var _ Repository = (*GoGitRepository)(nil)

// GoGitRepository implements Repository using go-git.
type GoGitRepository struct {
	repo    *gogit.Repository
	path    string
	workDir string
}

// Open opens a git repository at the given path, searching parent
// directories for the .git directory.
func Open(path string) (*GoGitRepository, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	root := wt.Filesystem.Root()

	return &GoGitRepository{
		repo:    r,
		path:    filepath.Join(root, ".git"),
		workDir: root,
	}, nil
}

func (r *GoGitRepository) Path() string {
	return r.path
}

func (r *GoGitRepository) WorkingDirectory() string {
	return r.workDir
}

func (r *GoGitRepository) IsHeadDetached() bool {
	ref, err := r.repo.Head()
	if err != nil {
		return false
	}
	return !ref.Name().IsBranch()
}

func (r *GoGitRepository) Head() (Branch, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Branch{}, ErrEmptyRepository
		}
		return Branch{}, fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.commitFromHash(ref.Hash())
	if err != nil {
		return Branch{}, fmt.Errorf("getting HEAD commit: %w", err)
	}

	return Branch{
		Name:           NewReferenceName(string(ref.Name())),
		Tip:            &commit,
		IsDetachedHead: !ref.Name().IsBranch(),
	}, nil
}

func (r *GoGitRepository) Resolve(rev string) (string, error) {
	if rev == "" || rev == HeadRef {
		ref, err := r.repo.Head()
		if err != nil {
			if errors.Is(err, plumbing.ErrReferenceNotFound) {
				return "", ErrEmptyRepository
			}
			return "", fmt.Errorf("resolving HEAD: %w", err)
		}
		return ref.Hash().String(), nil
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) {
			return "", fmt.Errorf("resolving %s: %w", rev, ErrRefNotFound)
		}
		return "", fmt.Errorf("resolving %s: %w", rev, err)
	}
	return hash.String(), nil
}

func (r *GoGitRepository) CommitFromSha(sha string) (Commit, error) {
	return r.commitFromHash(plumbing.NewHash(sha))
}

func (r *GoGitRepository) Tags() ([]Tag, error) {
	var tags []Tag

	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tag, ok, err := r.peelReference(ref)
		if err != nil {
			return err
		}
		if ok {
			tags = append(tags, tag)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

func (r *GoGitRepository) NumberOfUncommittedChanges() (int, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return 0, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return 0, fmt.Errorf("getting worktree status: %w", err)
	}

	count := 0
	for _, s := range status {
		if s.Staging != gogit.Unmodified || s.Worktree != gogit.Unmodified {
			count++
		}
	}

	return count, nil
}

// peelReference converts a tag ref into a Tag. Tags that do not end at a
// commit (trees, blobs, dangling targets) are reported with ok == false.
func (r *GoGitRepository) peelReference(ref *plumbing.Reference) (Tag, bool, error) {
	tag := Tag{
		Name:      NewReferenceName(string(ref.Name())),
		TargetSha: ref.Hash().String(),
	}

	tagObj, err := r.repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		when := tagObj.Tagger.When
		tag.Annotated = true
		tag.TaggerWhen = &when

		// Peel through nested annotated tags.
		for tagObj.TargetType == plumbing.TagObject {
			tagObj, err = r.repo.TagObject(tagObj.Target)
			if err != nil {
				return Tag{}, false, nil
			}
		}
		if tagObj.TargetType != plumbing.CommitObject {
			return Tag{}, false, nil
		}
		tag.CommitSha = tagObj.Target.String()
		return tag, true, nil

	case errors.Is(err, plumbing.ErrObjectNotFound):
		// Lightweight tag: the ref must point directly at a commit.
		if _, err := r.repo.CommitObject(ref.Hash()); err != nil {
			return Tag{}, false, nil
		}
		tag.CommitSha = tag.TargetSha
		return tag, true, nil

	default:
		return Tag{}, false, fmt.Errorf("reading tag %s: %w", tag.Name.Friendly, err)
	}
}

// commitFromHash loads a go-git commit and converts it to our Commit type.
func (r *GoGitRepository) commitFromHash(hash plumbing.Hash) (Commit, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return Commit{}, fmt.Errorf("loading commit %s: %w", hash.String(), err)
	}
	return convertCommit(c), nil
}

// convertCommit converts a go-git commit to our Commit type.
func convertCommit(c *object.Commit) Commit {
	parents := make([]string, 0, c.NumParents())
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return Commit{
		Sha:     c.Hash.String(),
		Parents: parents,
		When:    c.Committer.When.In(time.UTC),
		Message: c.Message,
	}
}

package version

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// Operation names recorded by the Timer.
const (
	OpDescribe = "describe"
	OpIsClean  = "isClean"
	OpBranch   = "branch"
)

// Loader computes Details for a repository.
type Loader struct {
	repo   git.Repository
	engine describe.Engine
	prefix string
	rev    string
	timer  *Timer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithTimer records each step of Load on t.
func WithTimer(t *Timer) LoaderOption {
	return func(l *Loader) {
		l.timer = t
	}
}

// WithRev describes rev instead of HEAD. The result is never dirty and
// carries no branch.
func WithRev(rev string) LoaderOption {
	return func(l *Loader) {
		l.rev = rev
	}
}

// NewLoader creates a Loader. prefix is stripped from the tag in the
// resulting description and must match the prefix engine filters on.
func NewLoader(repo git.Repository, engine describe.Engine, prefix string, opts ...LoaderOption) *Loader {
	l := &Loader{repo: repo, engine: engine, prefix: prefix}
	for _, opt := range opts {
		opt(l)
	}
	if l.timer == nil {
		l.timer = NewTimer(nil)
	}
	return l
}

// Load describes the repository and collects work tree and branch state.
func (l *Loader) Load(ctx context.Context) (Details, error) {
	var d Details

	var res describe.Result
	err := l.timer.Time(ctx, OpDescribe, func(context.Context) error {
		var err error
		res, err = l.engine.Describe(l.rev)
		return err
	})
	if err != nil {
		return Details{}, fmt.Errorf("describing %s: %w", l.repo.WorkingDirectory(), err)
	}

	d.Empty = res.IsEmpty()
	d.Sha = res.Sha
	d.Candidates = res.Candidates
	d.Description = res.Description()
	d.Description.Tag = strings.TrimPrefix(d.Description.Tag, l.prefix)

	// Work tree and branch state belong to HEAD, not to an explicit rev.
	if l.rev != "" && l.rev != git.HeadRef {
		d.Clean = true
		return d, nil
	}

	err = l.timer.Time(ctx, OpIsClean, func(context.Context) error {
		n, err := l.repo.NumberOfUncommittedChanges()
		if err != nil {
			return err
		}
		d.Clean = n == 0
		return nil
	})
	if err != nil {
		return Details{}, fmt.Errorf("checking work tree: %w", err)
	}

	err = l.timer.Time(ctx, OpBranch, func(context.Context) error {
		head, err := l.repo.Head()
		if errors.Is(err, git.ErrEmptyRepository) {
			return nil
		}
		if err != nil {
			return err
		}
		if !head.IsDetachedHead {
			d.Branch = head.FriendlyName()
		}
		return nil
	})
	if err != nil {
		return Details{}, fmt.Errorf("reading HEAD: %w", err)
	}

	return d, nil
}

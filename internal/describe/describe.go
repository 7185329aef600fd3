// Package describe implements git describe: finding the nearest tag
// reachable from a commit and rendering <tag>-<distance>-g<hash>.
//
// Two engines are provided. Describer runs a bounded candidate search over
// the commit graph and is merge aware. LinearDescriber walks first parents
// against a tag index. With the first-parent filter on (the default) both
// produce identical results, which Verify checks.
package describe

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/logger"
)

// Engine describes a rev.
type Engine interface {
	Describe(rev string) (Result, error)
}

// options holds the settings shared by both engines.
type options struct {
	prefix        string
	long          bool
	abbrev        int
	maxCandidates int
	firstParent   bool
	model         Model
	logger        *slog.Logger
}

func defaultOptions() options {
	return options{
		abbrev:        DefaultAbbrev,
		maxCandidates: DefaultMaxCandidates,
		firstParent:   true,
		model:         ModelDevelop,
		logger:        logger.Discard(),
	}
}

// Option configures an engine.
type Option func(*options)

// WithPrefix restricts candidate tags to names starting with prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLong forces <tag>-0-g<hash> for exact matches.
func WithLong(long bool) Option {
	return func(o *options) {
		o.long = long
	}
}

// WithAbbrev sets the rendered hash length. Values outside 4..40 are clamped.
func WithAbbrev(n int) Option {
	return func(o *options) {
		o.abbrev = min(max(n, MinAbbrev), MaxAbbrev)
	}
}

// WithMaxCandidates bounds the number of tags tracked by the candidate
// search. Values outside 1..MaxCandidatesLimit are clamped.
func WithMaxCandidates(n int) Option {
	return func(o *options) {
		o.maxCandidates = min(max(n, 1), MaxCandidatesLimit)
	}
}

// WithFirstParent toggles the first-parent filter. It is on by default.
func WithFirstParent(on bool) Option {
	return func(o *options) {
		o.firstParent = on
	}
}

// WithModel selects the releasing model.
func WithModel(m Model) Option {
	return func(o *options) {
		o.model = m
	}
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Compile-time checks that both engines implement Engine.
var (
	_ Engine = (*Describer)(nil)
	_ Engine = (*LinearDescriber)(nil)
)

// Describer describes commits using the bounded candidate search.
type Describer struct {
	repo git.Repository
	opts options
}

// New creates a Describer over repo.
func New(repo git.Repository, opts ...Option) *Describer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Describer{repo: repo, opts: o}
}

// Describe finds the nearest tag reachable from rev. An empty rev means
// HEAD. An empty repository yields an empty Result and no error.
func (d *Describer) Describe(rev string) (Result, error) {
	start, idx, ok, err := prepare(d.repo, rev, d.opts.prefix)
	if err != nil || !ok {
		return Result{}, err
	}

	res := Result{Sha: start.Sha, Abbrev: d.opts.abbrev}

	if tag, ok := idx.Lookup(start.Sha); ok {
		d.opts.logger.Debug("exact tag match", "tag", tag.Name.Friendly, "sha", start.ShortSha())
		res.Tag = tag.Name.Friendly
		res.Long = d.opts.long || d.opts.model.forcesLong(res.Tag, d.opts.prefix)
		res.Candidates = []Candidate{{Tag: tag, Sha: start.Sha}}
		return res, nil
	}

	s := newSearcher(d.repo, idx, d.opts.maxCandidates, d.opts.firstParent, d.opts.logger)
	candidates, err := s.run(start)
	if err != nil {
		return Result{}, err
	}

	res.Long = d.opts.long
	res.Candidates = make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		res.Candidates = append(res.Candidates, *c)
	}

	winner := best(candidates)
	if winner == nil {
		d.opts.logger.Debug("no reachable tag", "sha", start.ShortSha(), "prefix", d.opts.prefix)
		return res, nil
	}

	d.opts.logger.Debug("selected candidate",
		"tag", winner.Tag.Name.Friendly,
		"depth", winner.Depth,
		"candidates", len(candidates),
	)
	res.Tag = winner.Tag.Name.Friendly
	res.Distance = winner.Depth
	return res, nil
}

// prepare resolves rev, loads its commit and indexes the tags. ok is false
// for an empty repository.
func prepare(repo git.Repository, rev, prefix string) (git.Commit, TagIndex, bool, error) {
	sha, err := repo.Resolve(rev)
	if err != nil {
		switch {
		case errors.Is(err, git.ErrEmptyRepository):
			return git.Commit{}, nil, false, nil
		case errors.Is(err, git.ErrRefNotFound):
			return git.Commit{}, nil, false, &RefNotFoundError{Rev: revName(rev), Err: err}
		default:
			return git.Commit{}, nil, false, fmt.Errorf("resolving %s: %w", revName(rev), err)
		}
	}

	start, err := repo.CommitFromSha(sha)
	if err != nil {
		return git.Commit{}, nil, false, &GraphError{Sha: sha, Err: err}
	}

	tags, err := repo.Tags()
	if err != nil {
		return git.Commit{}, nil, false, &GraphError{Err: fmt.Errorf("listing tags: %w", err)}
	}

	return start, NewTagIndex(tags, prefix), true, nil
}

func revName(rev string) string {
	if rev == "" {
		return git.HeadRef
	}
	return rev
}

package describe

import (
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// LinearDescriber describes commits by walking first parents until the
// first indexed tag. It ignores WithMaxCandidates and WithFirstParent and
// always follows first parents.
type LinearDescriber struct {
	repo git.Repository
	opts options
}

// NewLinear creates a LinearDescriber over repo.
func NewLinear(repo git.Repository, opts ...Option) *LinearDescriber {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &LinearDescriber{repo: repo, opts: o}
}

// Describe finds the nearest tag on the first-parent line of rev.
func (d *LinearDescriber) Describe(rev string) (Result, error) {
	start, idx, ok, err := prepare(d.repo, rev, d.opts.prefix)
	if err != nil || !ok {
		return Result{}, err
	}

	res := Result{Sha: start.Sha, Abbrev: d.opts.abbrev, Long: d.opts.long}

	w := NewFirstParentWalker(d.repo, start.Sha)
	distance := 0
	for w.Next() {
		c := w.Commit()
		if tag, ok := idx.Lookup(c.Sha); ok {
			res.Tag = tag.Name.Friendly
			res.Distance = distance
			res.Candidates = []Candidate{{Tag: tag, Sha: c.Sha, Depth: distance}}
			if distance == 0 {
				res.Long = d.opts.long || d.opts.model.forcesLong(res.Tag, d.opts.prefix)
			}
			d.opts.logger.Debug("found tag on first-parent line", "tag", res.Tag, "distance", distance)
			return res, nil
		}
		distance++
	}
	if err := w.Err(); err != nil {
		return Result{}, err
	}

	d.opts.logger.Debug("no reachable tag", "sha", start.ShortSha(), "prefix", d.opts.prefix)
	return res, nil
}

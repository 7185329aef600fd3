package describe

import (
	"log/slog"

	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/logger"
)

const (
	// DefaultMaxCandidates is the number of tags tracked when no bound is set.
	DefaultMaxCandidates = 10

	// MaxCandidatesLimit is the number of reachability markers a search can
	// track at once.
	MaxCandidatesLimit = 64
)

// Candidate is a tag considered by the search, with the number of visited
// commits it does not reach.
type Candidate struct {
	Tag   git.Tag
	Sha   string
	Depth int

	flag uint64
}

// node is the search state for one commit.
type node struct {
	commit   git.Commit
	flags    uint64
	seq      int
	expanded bool
	parents  []string
}

// searcher runs a bounded candidate search over the commit graph. A
// searcher is single use.
type searcher struct {
	repo          git.Repository
	index         TagIndex
	maxCandidates int
	firstParent   bool
	logger        *slog.Logger

	nodes      map[string]*node
	queue      *binaryheap.Heap
	seq        int
	all        uint64
	candidates []*Candidate
}

func newSearcher(repo git.Repository, index TagIndex, maxCandidates int, firstParent bool, logger *slog.Logger) *searcher {
	return &searcher{
		repo:          repo,
		index:         index,
		maxCandidates: maxCandidates,
		firstParent:   firstParent,
		logger:        logger,
		nodes:         make(map[string]*node),
		queue:         binaryheap.NewWith(byCommitTime),
	}
}

// byCommitTime pops newer commits first, then commits queued earlier.
func byCommitTime(a, b interface{}) int {
	na, nb := a.(*node), b.(*node)
	switch {
	case na.commit.When.After(nb.commit.When):
		return -1
	case nb.commit.When.After(na.commit.When):
		return 1
	}
	return na.seq - nb.seq
}

// run walks history from start, which must not carry a tag itself, and
// returns the candidates in discovery order.
func (s *searcher) run(start git.Commit) ([]*Candidate, error) {
	s.push(start, 0)

	seen := 0
	admitting := true

	for !s.queue.Empty() {
		v, _ := s.queue.Pop()
		n := v.(*node)

		if admitting {
			if n.flags&s.all == 0 {
				if tag, ok := s.index.Lookup(n.commit.Sha); ok {
					s.admit(n, tag, seen)
				}
			}
			s.charge(n)

			if len(s.candidates) >= s.maxCandidates {
				admitting = false
				s.logger.Debug("candidate bound reached", "max", s.maxCandidates, "sha", n.commit.ShortSha())
			} else {
				seen++
			}

			if err := s.expand(n); err != nil {
				return nil, err
			}
			continue
		}

		if n.flags&s.all == s.all {
			// Every candidate reaches this commit, so nothing behind it can
			// change a depth.
			logger.Trace(s.logger, "pruning dominated commit", "sha", n.commit.ShortSha())
			s.seal(n)
			continue
		}

		s.charge(n)
		if err := s.expand(n); err != nil {
			return nil, err
		}
	}

	return s.candidates, nil
}

// admit starts a candidate on n.
func (s *searcher) admit(n *node, tag git.Tag, depth int) {
	flag := uint64(1) << uint(len(s.candidates))
	s.candidates = append(s.candidates, &Candidate{
		Tag:   tag,
		Sha:   n.commit.Sha,
		Depth: depth,
		flag:  flag,
	})
	s.all |= flag
	n.flags |= flag

	s.logger.Debug("admitted candidate",
		"tag", tag.Name.Friendly,
		"sha", n.commit.ShortSha(),
		"depth", depth,
	)
}

// charge counts n against every candidate that does not reach it.
func (s *searcher) charge(n *node) {
	for _, c := range s.candidates {
		if n.flags&c.flag == 0 {
			c.Depth++
		}
	}
}

// parentsOf returns the parents the walk may follow from c.
func (s *searcher) parentsOf(c git.Commit) []string {
	if s.firstParent && len(c.Parents) > 1 {
		return c.Parents[:1]
	}
	return c.Parents
}

// expand queues the parents of n, carrying its markers to them.
func (s *searcher) expand(n *node) error {
	n.expanded = true
	n.parents = s.parentsOf(n.commit)

	for _, sha := range n.parents {
		if p, ok := s.nodes[sha]; ok {
			s.carry(p, n.flags)
			continue
		}
		c, err := s.repo.CommitFromSha(sha)
		if err != nil {
			return &GraphError{Sha: sha, Err: err}
		}
		s.push(c, n.flags)
	}
	return nil
}

// seal marks the parents of n as seen without queueing them, so they are
// never visited even when reached through another path.
func (s *searcher) seal(n *node) {
	n.expanded = true
	n.parents = s.parentsOf(n.commit)

	for _, sha := range n.parents {
		if p, ok := s.nodes[sha]; ok {
			s.carry(p, n.flags)
			continue
		}
		s.nodes[sha] = &node{commit: git.Commit{Sha: sha}, flags: n.flags}
	}
}

func (s *searcher) push(c git.Commit, flags uint64) {
	n := &node{commit: c, flags: flags, seq: s.seq}
	s.seq++
	s.nodes[c.Sha] = n
	s.queue.Push(n)
}

// carry adds flags to n and to every ancestor already expanded from it.
func (s *searcher) carry(n *node, flags uint64) {
	stack := []*node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		added := flags &^ cur.flags
		if added == 0 {
			continue
		}
		cur.flags |= added
		if !cur.expanded {
			continue
		}
		for _, sha := range cur.parents {
			if p, ok := s.nodes[sha]; ok {
				stack = append(stack, p)
			}
		}
	}
}

// best returns the candidate with the smallest depth, the earliest
// discovered on ties.
func best(candidates []*Candidate) *Candidate {
	var winner *Candidate
	for _, c := range candidates {
		if winner == nil || c.Depth < winner.Depth {
			winner = c
		}
	}
	return winner
}

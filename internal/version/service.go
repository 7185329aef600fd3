package version

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// OpenFunc opens the repository rooted at a work tree.
type OpenFunc func(root string) (git.Repository, error)

// EngineFunc builds the describe engine for a repository and prefix.
type EngineFunc func(repo git.Repository, prefix string) describe.Engine

// entry is one memoized computation. once guards details and err.
type entry struct {
	once    sync.Once
	details Details
	err     error
}

// Service memoizes Details per (root work tree, prefix). Each key is
// computed at most once, even when requested concurrently. Failures are
// memoized as well.
type Service struct {
	cache  *gocache.Cache
	open   OpenFunc
	engine EngineFunc
	timer  *Timer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithOpener replaces how repositories are opened.
func WithOpener(fn OpenFunc) ServiceOption {
	return func(s *Service) {
		s.open = fn
	}
}

// WithEngine replaces how describe engines are built.
func WithEngine(fn EngineFunc) ServiceOption {
	return func(s *Service) {
		s.engine = fn
	}
}

// WithServiceTimer shares t across every computation of the service.
func WithServiceTimer(t *Timer) ServiceOption {
	return func(s *Service) {
		s.timer = t
	}
}

// NewService creates a Service backed by go-git.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		cache: gocache.New(gocache.NoExpiration, 0),
		open: func(root string) (git.Repository, error) {
			return git.Open(root)
		},
		engine: func(repo git.Repository, prefix string) describe.Engine {
			return describe.New(repo, describe.WithPrefix(prefix))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timer == nil {
		s.timer = NewTimer(nil)
	}
	return s
}

// Timer returns the timer shared by all computations.
func (s *Service) Timer() *Timer {
	return s.timer
}

// Details returns the version details of the repository containing path.
func (s *Service) Details(ctx context.Context, path, prefix string) (Details, error) {
	root, err := RootWorkTree(path)
	if err != nil {
		return Details{}, err
	}

	e := s.claim(Key(root, prefix))
	e.once.Do(func() {
		e.details, e.err = s.compute(ctx, root, prefix)
	})
	return e.details, e.err
}

// Version returns the version string of the repository containing path.
func (s *Service) Version(ctx context.Context, path, prefix string) (string, error) {
	d, err := s.Details(ctx, path, prefix)
	if err != nil {
		return "", err
	}
	return d.Version(), nil
}

// Forget drops the memoized result for path and prefix.
func (s *Service) Forget(path, prefix string) {
	root, err := RootWorkTree(path)
	if err != nil {
		return
	}
	s.cache.Delete(Key(root, prefix))
}

// claim returns the entry for key, inserting a fresh one when absent.
// Add fails when another caller inserted first, so every caller ends up
// sharing a single entry.
func (s *Service) claim(key string) *entry {
	for {
		e := &entry{}
		if err := s.cache.Add(key, e, gocache.NoExpiration); err == nil {
			return e
		}
		if v, ok := s.cache.Get(key); ok {
			return v.(*entry)
		}
	}
}

func (s *Service) compute(ctx context.Context, root, prefix string) (Details, error) {
	repo, err := s.open(root)
	if err != nil {
		return Details{}, fmt.Errorf("opening %s: %w", root, err)
	}
	return NewLoader(repo, s.engine(repo, prefix), prefix, WithTimer(s.timer)).Load(ctx)
}

// Key is the memoization key for a root work tree and prefix.
func Key(root, prefix string) string {
	return root + "|" + prefix
}

// RootWorkTree returns the absolute path of the nearest directory at or
// above path that contains a .git entry.
func RootWorkTree(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	dir := abs
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("cannot find .git directory above %s", abs)
		}
		dir = parent
	}
}

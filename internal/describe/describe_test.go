package describe

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/logger"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
	"github.com/stretchr/testify/require"
)

func abbrev(sha string) string {
	return git.Abbreviate(sha, 7)
}

// engines returns both implementations configured the same way.
func engines(repo git.Repository, opts ...Option) map[string]Engine {
	return map[string]Engine{
		"search": New(repo, opts...),
		"linear": NewLinear(repo, opts...),
	}
}

func TestDescribe_Scenarios(t *testing.T) {
	tagTime := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		build        func(g *testutil.Graph) string // returns the expected output
		prefix       string
		wantDistance int
	}{
		{
			name: "A annotated tag on the only commit",
			build: func(g *testutil.Graph) string {
				c1 := g.Commit()
				g.AnnotatedTag("1.0.0", c1, tagTime)
				return "1.0.0"
			},
		},
		{
			name: "B one commit past a tag",
			build: func(g *testutil.Graph) string {
				c1 := g.Commit()
				g.Tag("1.0.0", c1)
				c2 := g.Commit(c1)
				return "1.0.0-1-g" + abbrev(c2)
			},
			wantDistance: 1,
		},
		{
			name: "C two lightweight tags pick the smaller name",
			build: func(g *testutil.Graph) string {
				c1 := g.Commit()
				g.Tag("2.0.0", c1)
				g.Tag("1.0.0", c1)
				return "1.0.0"
			},
		},
		{
			name: "D older annotated tag beats lightweight tag",
			build: func(g *testutil.Graph) string {
				c1 := g.Commit()
				g.AnnotatedTag("z-annotated", c1, tagTime.Add(-24*time.Hour))
				g.Tag("a-lightweight", c1)
				return "z-annotated"
			},
		},
		{
			name: "E no tags",
			build: func(g *testutil.Graph) string {
				c := g.Chain("", 3)
				return abbrev(c[2])
			},
		},
		{
			name: "F no tag matches the prefix",
			build: func(g *testutil.Graph) string {
				c := g.Chain("", 2)
				g.Tag("app/1.0.0", c[0])
				return abbrev(c[1])
			},
			prefix: "v/",
		},
		{
			name: "prefix picks the matching tag",
			build: func(g *testutil.Graph) string {
				c := g.Chain("", 4)
				g.Tag("v/1.0.0", c[0])
				g.Tag("app/2.0.0", c[2])
				return "v/1.0.0-3-g" + abbrev(c[3])
			},
			prefix:       "v/",
			wantDistance: 3,
		},
		{
			name: "nearest tag on a long line",
			build: func(g *testutil.Graph) string {
				c := g.Chain("", 10)
				g.Tag("0.1.0", c[0])
				g.Tag("0.2.0", c[4])
				g.Tag("0.3.0", c[6])
				return "0.3.0-3-g" + abbrev(c[9])
			},
			wantDistance: 3,
		},
	}

	for _, tt := range tests {
		g := testutil.NewGraph()
		want := tt.build(g)

		for name, e := range engines(g.Repository(), WithPrefix(tt.prefix)) {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				res, err := e.Describe("")
				require.NoError(t, err)
				require.Equal(t, want, res.String())
				require.Equal(t, tt.wantDistance, res.Distance)
			})
		}
	}
}

func TestDescribe_Determinism(t *testing.T) {
	g := testutil.NewGraph()
	c := g.Chain("", 5)
	g.Tag("b", c[1])
	g.Tag("a", c[1])
	g.AnnotatedTag("x", c[3], time.Now())

	d := New(g.Repository())
	first, err := d.Describe("")
	require.NoError(t, err)
	second, err := d.Describe("")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, "x-1-g"+abbrev(c[4]), first.String())
}

func TestDescribe_Rev(t *testing.T) {
	g := testutil.NewGraph()
	c := g.Chain("", 4)
	g.Tag("1.0.0", c[0])

	d := New(g.Repository())

	res, err := d.Describe(c[2])
	require.NoError(t, err)
	require.Equal(t, "1.0.0-2-g"+abbrev(c[2]), res.String())
	require.Equal(t, c[2], res.Sha)

	res, err = d.Describe("1.0.0")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", res.String())
}

func TestDescribe_LongAndAbbrev(t *testing.T) {
	g := testutil.NewGraph()
	c := g.Chain("", 2)
	g.Tag("1.0.0", c[1])
	g.Tag("0.9.0", c[0])

	for name, e := range engines(g.Repository(), WithLong(true), WithAbbrev(10)) {
		t.Run(name, func(t *testing.T) {
			res, err := e.Describe("")
			require.NoError(t, err)
			require.Equal(t, "1.0.0-0-g"+c[1][:10], res.String())

			res, err = e.Describe(c[0])
			require.NoError(t, err)
			require.Equal(t, "0.9.0-0-g"+c[0][:10], res.String())
		})
	}
}

func TestDescribe_AbbrevClamped(t *testing.T) {
	g := testutil.NewGraph()
	c := g.Commit()

	res, err := New(g.Repository(), WithAbbrev(1)).Describe("")
	require.NoError(t, err)
	require.Equal(t, c[:4], res.String())

	res, err = New(g.Repository(), WithAbbrev(99)).Describe("")
	require.NoError(t, err)
	require.Equal(t, c, res.String())
}

func TestDescribe_ReleaseBranchModel(t *testing.T) {
	tests := []struct {
		tag    string
		prefix string
		long   bool
	}{
		{"1.0.0", "", true},
		{"1.2.0", "", true},
		{"v1.2.0", "", true},
		{"1.0.1", "", false},
		{"1.1.0-rc.1", "", false},
		{"1.1.0+build.5", "", false},
		{"not-a-version", "", false},
		{"release/2.0.0", "release/", true},
		{"release/2.0.3", "release/", false},
	}

	for _, tt := range tests {
		g := testutil.NewGraph()
		c := g.Commit()
		g.Tag(tt.tag, c)

		for name, e := range engines(g.Repository(), WithPrefix(tt.prefix), WithModel(ModelReleaseBranch)) {
			t.Run(tt.tag+"/"+name, func(t *testing.T) {
				res, err := e.Describe("")
				require.NoError(t, err)
				if tt.long {
					require.Equal(t, tt.tag+"-0-g"+abbrev(c), res.String())
				} else {
					require.Equal(t, tt.tag, res.String())
				}
			})
		}
	}
}

func TestDescribe_ReleaseBranchModelOnlyAffectsExactMatches(t *testing.T) {
	g := testutil.NewGraph()
	c := g.Chain("", 2)
	g.Tag("1.0.0", c[0])

	res, err := New(g.Repository(), WithModel(ModelReleaseBranch)).Describe("")
	require.NoError(t, err)
	require.Equal(t, "1.0.0-1-g"+abbrev(c[1]), res.String())
}

func TestDescribe_FirstParentIgnoresMergedTags(t *testing.T) {
	g := testutil.NewGraph()
	m := g.Chain("", 4)
	g.Tag("v1.0.0", m[0])
	f1 := g.Commit(m[2])
	g.Tag("feature-1", f1)
	merge := g.Commit(m[3], f1)

	for name, e := range engines(g.Repository()) {
		t.Run(name, func(t *testing.T) {
			res, err := e.Describe("")
			require.NoError(t, err)
			require.Equal(t, "v1.0.0-4-g"+abbrev(merge), res.String())
		})
	}
}

func TestDescribe_WithoutFirstParentFindsMergedTag(t *testing.T) {
	g := testutil.NewGraph()
	m := g.Chain("", 4)
	g.Tag("v1.0.0", m[0])
	f1 := g.Commit(m[2])
	g.Tag("feature-1", f1)
	merge := g.Commit(m[3], f1)

	res, err := New(g.Repository(), WithFirstParent(false)).Describe("")
	require.NoError(t, err)
	// Commits not reachable from feature-1: merge and m[3].
	require.Equal(t, "feature-1-2-g"+abbrev(merge), res.String())
	require.Len(t, res.Candidates, 1, "v1.0.0 is dominated by feature-1")
}

func TestDescribe_WithoutFirstParentCountsSideBranchCommits(t *testing.T) {
	g := testutil.NewGraph()
	root := g.Commit()
	g.Tag("v1.0.0", root)
	main := g.Commit(root)
	side := g.Chain(root, 3)
	merge := g.Commit(main, side[2])

	res, err := New(g.Repository(), WithFirstParent(false)).Describe("")
	require.NoError(t, err)
	// merge, main and the three side commits.
	require.Equal(t, "v1.0.0-5-g"+abbrev(merge), res.String())

	res, err = New(g.Repository()).Describe("")
	require.NoError(t, err)
	require.Equal(t, "v1.0.0-2-g"+abbrev(merge), res.String())
}

func TestDescribe_CandidateBound(t *testing.T) {
	g := testutil.NewGraph()
	var roots []string
	for i := 0; i < 5; i++ {
		r := g.Commit()
		g.Tag("t"+string(rune('1'+i)), r)
		roots = append(roots, r)
	}
	merge := g.Commit(roots...)

	res, err := New(g.Repository(), WithFirstParent(false)).Describe("")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 5)
	require.Equal(t, "t5-5-g"+abbrev(merge), res.String())

	res, err = New(g.Repository(), WithFirstParent(false), WithMaxCandidates(2)).Describe("")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	require.Equal(t, "t5", res.Candidates[0].Tag.Name.Friendly)
	require.Equal(t, "t4", res.Candidates[1].Tag.Name.Friendly)
	require.Equal(t, "t5-5-g"+abbrev(merge), res.String())

	res, err = New(g.Repository()).Describe("")
	require.NoError(t, err)
	require.Equal(t, "t1-1-g"+abbrev(merge), res.String())
}

func TestDescribe_CandidateBoundKeepsEarliestFound(t *testing.T) {
	g := testutil.NewGraph()
	at := func(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC) }

	// near sits on an old line with a deep history; far is newer, so the
	// date-ordered walk reaches it first.
	b := g.CommitAt(at(1))
	b = g.CommitAt(at(2), b)
	near := g.CommitAt(at(3), b)
	g.Tag("near", near)
	b1 := g.CommitAt(at(20), near)

	far := g.CommitAt(at(10))
	g.Tag("far", far)
	a := g.CommitAt(at(11), far)
	a = g.CommitAt(at(12), a)
	a = g.CommitAt(at(13), a)
	merge := g.CommitAt(at(21), a, b1)

	res, err := New(g.Repository(), WithFirstParent(false)).Describe("")
	require.NoError(t, err)
	require.Equal(t, "near-6-g"+abbrev(merge), res.String())

	// With room for one candidate only the first tag found competes.
	res, err = New(g.Repository(), WithFirstParent(false), WithMaxCandidates(1)).Describe("")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	require.Equal(t, "far-8-g"+abbrev(merge), res.String())
}

func TestDescribe_DepthTieGoesToFirstDiscovered(t *testing.T) {
	g := testutil.NewGraph()
	a := g.Commit()
	b := g.Commit()
	g.Tag("older-line", a)
	g.Tag("newer-line", b)
	merge := g.Commit(a, b)

	res, err := New(g.Repository(), WithFirstParent(false)).Describe("")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	require.Equal(t, res.Candidates[0].Depth, res.Candidates[1].Depth)
	require.Equal(t, "newer-line-2-g"+abbrev(merge), res.String())
}

func TestDescribe_EmptyRepository(t *testing.T) {
	g := testutil.NewGraph()

	for name, e := range engines(g.Repository()) {
		t.Run(name, func(t *testing.T) {
			res, err := e.Describe("")
			require.NoError(t, err)
			require.True(t, res.IsEmpty())
			require.Equal(t, "", res.String())
		})
	}
}

func TestDescribe_RefNotFound(t *testing.T) {
	g := testutil.NewGraph()
	g.Commit()

	for name, e := range engines(g.Repository()) {
		t.Run(name, func(t *testing.T) {
			_, err := e.Describe("no-such-ref")
			var rnf *RefNotFoundError
			require.ErrorAs(t, err, &rnf)
			require.Equal(t, "no-such-ref", rnf.Rev)
			require.ErrorIs(t, err, git.ErrRefNotFound)
		})
	}
}

func TestDescribe_GraphErrors(t *testing.T) {
	g := testutil.NewGraph()
	c := g.Chain("", 3)
	g.Tag("1.0.0", c[0])

	boom := errors.New("disk on fire")

	t.Run("missing parent", func(t *testing.T) {
		repo := g.Repository()
		inner := repo.CommitFromShaFunc
		repo.CommitFromShaFunc = func(sha string) (git.Commit, error) {
			if sha == c[0] {
				return git.Commit{}, boom
			}
			return inner(sha)
		}

		for name, e := range engines(repo) {
			_, err := e.Describe("")
			var ge *GraphError
			require.ErrorAs(t, err, &ge, name)
			require.Equal(t, c[0], ge.Sha, name)
			require.ErrorIs(t, err, boom, name)
		}
	})

	t.Run("tag listing", func(t *testing.T) {
		repo := g.Repository()
		repo.TagsFunc = func() ([]git.Tag, error) { return nil, boom }

		for name, e := range engines(repo) {
			_, err := e.Describe("")
			var ge *GraphError
			require.ErrorAs(t, err, &ge, name)
			require.ErrorIs(t, err, boom, name)
		}
	})

	t.Run("resolve failure", func(t *testing.T) {
		repo := g.Repository()
		repo.ResolveFunc = func(string) (string, error) { return "", boom }

		_, err := New(repo).Describe("")
		require.ErrorIs(t, err, boom)
		require.Contains(t, err.Error(), "HEAD")
	})
}

func TestDescribe_Logging(t *testing.T) {
	g := testutil.NewGraph()
	c := g.Chain("", 3)
	g.Tag("1.0.0", c[0])

	var buf bytes.Buffer
	l, _ := logger.New(logger.Options{Writer: &buf, Level: logger.LevelDebug})

	_, err := New(g.Repository(), WithLogger(l)).Describe("")
	require.NoError(t, err)
	require.Contains(t, buf.String(), "admitted candidate")
	require.Contains(t, buf.String(), "tag=1.0.0")
	require.Contains(t, buf.String(), "selected candidate")
}

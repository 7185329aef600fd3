package describe

import (
	"errors"
	"testing"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
	"github.com/stretchr/testify/require"
)

type fixedEngine struct {
	res Result
	err error
}

func (f fixedEngine) Describe(string) (Result, error) {
	return f.res, f.err
}

func TestVerify_Agreement(t *testing.T) {
	g := testutil.NewGraph()
	c := g.Chain("", 3)
	g.Tag("1.0.0", c[0])
	repo := g.Repository()

	res, err := Verify(New(repo), NewLinear(repo)).Describe("")
	require.NoError(t, err)
	require.Equal(t, "1.0.0-2-g"+abbrev(c[2]), res.String())
}

func TestVerify_ReturnsPrimaryResult(t *testing.T) {
	primary := fixedEngine{res: Result{Tag: "v1", Sha: testSha, Candidates: []Candidate{{Sha: "x"}, {Sha: "y"}}}}
	other := fixedEngine{res: Result{Tag: "v1", Sha: testSha}}

	res, err := Verify(primary, other).Describe("")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
}

func TestVerify_Disagreement(t *testing.T) {
	primary := fixedEngine{res: Result{Tag: "1.0.0", Distance: 1, Sha: testSha, Abbrev: 7}}
	other := fixedEngine{res: Result{Tag: "0.9.0", Distance: 3, Sha: testSha, Abbrev: 7}}

	_, err := Verify(primary, other).Describe("")
	require.ErrorIs(t, err, ErrInconsistentResult)
	require.Contains(t, err.Error(), "1.0.0-1-g0123456")
	require.Contains(t, err.Error(), "0.9.0-3-g0123456")
}

func TestVerify_ErrorMismatch(t *testing.T) {
	ok := fixedEngine{res: Result{Tag: "1.0.0", Sha: testSha}}
	failing := fixedEngine{err: &GraphError{Sha: testSha, Err: errors.New("boom")}}

	_, err := Verify(ok, failing).Describe("")
	require.ErrorIs(t, err, ErrInconsistentResult)

	_, err = Verify(failing, ok).Describe("")
	require.ErrorIs(t, err, ErrInconsistentResult)
}

func TestVerify_SameErrorPassesThrough(t *testing.T) {
	g := testutil.NewGraph()
	g.Commit()
	repo := g.Repository()

	_, err := Verify(New(repo), NewLinear(repo)).Describe("missing")
	require.NotErrorIs(t, err, ErrInconsistentResult)
	require.ErrorIs(t, err, git.ErrRefNotFound)

	refErr := fixedEngine{err: &RefNotFoundError{Rev: "x"}}
	graphErr := fixedEngine{err: &GraphError{Err: errors.New("boom")}}
	_, err = Verify(refErr, graphErr).Describe("x")
	require.ErrorIs(t, err, ErrInconsistentResult)
}

func TestVerify_StopsOnMergeAwareEngine(t *testing.T) {
	g := testutil.NewGraph()
	root := g.Commit()
	g.Tag("v1.0.0", root)
	main := g.Commit(root)
	side := g.Commit(root)
	g.Tag("side", side)
	g.Commit(main, side)
	repo := g.Repository()

	// Without the first-parent filter the search sees the side tag while
	// the linear walk cannot.
	_, err := Verify(New(repo, WithFirstParent(false)), NewLinear(repo)).Describe("")
	require.ErrorIs(t, err, ErrInconsistentResult)
}

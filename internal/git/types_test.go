package git

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommit_ShortSha(t *testing.T) {
	tests := []struct {
		name   string
		sha    string
		expect string
	}{
		{"normal", "abc1234567890def", "abc1234"},
		{"short sha", "abc", "abc"},
		{"exactly 7", "abc1234", "abc1234"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Commit{Sha: tt.sha}
			require.Equal(t, tt.expect, c.ShortSha())
		})
	}
}

func TestCommit_FirstParent(t *testing.T) {
	require.Equal(t, "", Commit{}.FirstParent())
	c := Commit{Parents: []string{"p1", "p2"}}
	require.Equal(t, "p1", c.FirstParent())
}

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		name   string
		sha    string
		n      int
		expect string
	}{
		{"normal", "abc1234567890", 7, "abc1234"},
		{"longer than sha", "abc", 10, "abc"},
		{"exact length", "abc", 3, "abc"},
		{"non-positive keeps full sha", "abc1234", 0, "abc1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expect, Abbreviate(tt.sha, tt.n))
		})
	}
}

func TestCommit_IsEmpty(t *testing.T) {
	require.True(t, Commit{}.IsEmpty())
	require.False(t, Commit{Sha: "abc"}.IsEmpty())
}

func TestNewReferenceName(t *testing.T) {
	tests := []struct {
		canonical string
		friendly  string
	}{
		{"refs/heads/main", "main"},
		{"refs/heads/feature/auth", "feature/auth"},
		{"refs/tags/v1.0.0", "v1.0.0"},
		{"refs/remotes/origin/main", "refs/remotes/origin/main"},
		{"refs/stash", "refs/stash"},
		{HeadRef, HeadRef},
	}
	for _, tt := range tests {
		t.Run(tt.canonical, func(t *testing.T) {
			ref := NewReferenceName(tt.canonical)
			require.Equal(t, tt.canonical, ref.Canonical)
			require.Equal(t, tt.friendly, ref.Friendly)
		})
	}
}

func TestNewBranchReferenceName(t *testing.T) {
	ref := NewBranchReferenceName("develop")
	require.Equal(t, "refs/heads/develop", ref.Canonical)
	require.Equal(t, "develop", ref.Friendly)
}

func TestBranch_FriendlyName(t *testing.T) {
	b := Branch{Name: NewBranchReferenceName("feature/login")}
	require.Equal(t, "feature/login", b.FriendlyName())
}

func TestNewTagReferenceName(t *testing.T) {
	ref := NewTagReferenceName("app/1.0.0")
	require.Equal(t, "refs/tags/app/1.0.0", ref.Canonical)
	require.Equal(t, "app/1.0.0", ref.Friendly)
}

func TestTag_Peeled(t *testing.T) {
	lightweight := Tag{Name: NewTagReferenceName("1.0.0"), TargetSha: "c1"}
	require.Equal(t, "c1", lightweight.Peeled())
	require.Equal(t, "1.0.0", lightweight.String())

	annotated := Tag{Name: NewTagReferenceName("2.0.0"), TargetSha: "t1", CommitSha: "c2", Annotated: true}
	require.Equal(t, "c2", annotated.Peeled())
}

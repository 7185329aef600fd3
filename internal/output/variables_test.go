package output

import (
	"testing"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/version"
	"github.com/stretchr/testify/require"
)

const sha = "0123456789abcdef0123456789abcdef01234567"

func TestGetVariables(t *testing.T) {
	d := version.Details{
		Description: describe.Description{Tag: "1.2.0", Distance: 3, Hash: "0123456"},
		Branch:      "main",
		Sha:         sha,
	}

	vars := GetVariables(d)
	require.Equal(t, "1.2.0-3-g0123456.dirty", vars[VarVersion])
	require.Equal(t, "1.2.0-3-g0123456", vars[VarDescribe])
	require.Equal(t, "1.2.0", vars[VarLastTag])
	require.Equal(t, "3", vars[VarCommitDistance])
	require.Equal(t, "0123456789", vars[VarGitHash])
	require.Equal(t, sha, vars[VarGitHashFull])
	require.Equal(t, "main", vars[VarBranchName])
	require.Equal(t, "false", vars[VarIsCleanTag])
	require.Equal(t, "true", vars[VarIsDirty])
}

func TestGetVariables_CleanTag(t *testing.T) {
	vars := GetVariables(version.Details{
		Description: describe.Description{Tag: "2.0.0"},
		Clean:       true,
		Sha:         sha,
	})
	require.Equal(t, "2.0.0", vars[VarVersion])
	require.Equal(t, "true", vars[VarIsCleanTag])
	require.Equal(t, "false", vars[VarIsDirty])
	require.Equal(t, "0", vars[VarCommitDistance])
}

func TestGetVariables_Empty(t *testing.T) {
	vars := GetVariables(version.Details{Empty: true})
	require.Equal(t, version.Unspecified, vars[VarVersion])
	require.Equal(t, version.Unspecified, vars[VarDescribe])
	require.Equal(t, "false", vars[VarIsDirty])
	require.Empty(t, vars[VarGitHash])
}

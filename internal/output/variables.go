// Package output renders version details as variables, text, JSON or an
// explanation of the candidate search.
package output

import (
	"strconv"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/version"
)

// Variable names.
const (
	VarVersion        = "Version"
	VarDescribe       = "Describe"
	VarLastTag        = "LastTag"
	VarCommitDistance = "CommitDistance"
	VarGitHash        = "GitHash"
	VarGitHashFull    = "GitHashFull"
	VarBranchName     = "BranchName"
	VarIsCleanTag     = "IsCleanTag"
	VarIsDirty        = "IsDirty"
)

// GetVariables flattens d into the variables exposed by --output and
// --show-variable.
func GetVariables(d version.Details) map[string]string {
	describe := version.Unspecified
	if !d.Empty {
		describe = d.Description.String()
	}
	return map[string]string{
		VarVersion:        d.Version(),
		VarDescribe:       describe,
		VarLastTag:        d.LastTag(),
		VarCommitDistance: strconv.Itoa(d.CommitDistance()),
		VarGitHash:        d.GitHash(),
		VarGitHashFull:    d.GitHashFull(),
		VarBranchName:     d.BranchName(),
		VarIsCleanTag:     strconv.FormatBool(d.IsCleanTag()),
		VarIsDirty:        strconv.FormatBool(!d.Empty && !d.Clean),
	}
}

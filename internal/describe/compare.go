package describe

import (
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// CompareTags orders two tags pointing at the same commit. It returns a
// negative number when a wins, positive when b wins and zero only when
// both carry the same ref name.
//
// Annotated tags beat lightweight ones. Between two annotated tags with
// known timestamps the newer one wins. Everything else falls back to the
// lexicographically smaller full ref name.
func CompareTags(a, b git.Tag) int {
	if a.Annotated != b.Annotated {
		if a.Annotated {
			return -1
		}
		return 1
	}

	if a.Annotated && a.TaggerWhen != nil && b.TaggerWhen != nil {
		switch {
		case a.TaggerWhen.After(*b.TaggerWhen):
			return -1
		case b.TaggerWhen.After(*a.TaggerWhen):
			return 1
		}
	}

	return strings.Compare(a.Name.Canonical, b.Name.Canonical)
}

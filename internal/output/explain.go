package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/version"
)

const arrowPrefix = "→"

// WriteExplanation lists the candidate tags the search weighed, marks the
// one selected and prints the resulting version.
func WriteExplanation(w io.Writer, d version.Details) error {
	fmt.Fprintln(w, "Candidates:")

	selected := selectedIndex(d.Candidates)
	if len(d.Candidates) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, c := range d.Candidates {
		marker := " "
		if i == selected {
			marker = arrowPrefix
		}
		kind := "lightweight"
		if c.Tag.Annotated {
			kind = "annotated"
		}
		fmt.Fprintf(w, "  %s %-24s depth %d (%s, commit %s)\n",
			marker, c.Tag.Name.Friendly, c.Depth, kind, git.Abbreviate(c.Sha, describe.DefaultAbbrev))
	}

	fmt.Fprintln(w)
	if d.Sha != "" {
		fmt.Fprintf(w, "Commit: %s\n", d.Sha)
	}
	_, err := fmt.Fprintf(w, "Result: %s\n", d.Version())
	return err
}

// selectedIndex returns the first candidate with the smallest depth, or -1.
func selectedIndex(candidates []describe.Candidate) int {
	idx := -1
	for i, c := range candidates {
		if idx < 0 || c.Depth < candidates[idx].Depth {
			idx = i
		}
	}
	return idx
}

// FormatExplanation returns the explain output as a string.
func FormatExplanation(d version.Details) string {
	var sb strings.Builder
	_ = WriteExplanation(&sb, d)
	return sb.String()
}

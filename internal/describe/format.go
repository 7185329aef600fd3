package describe

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

const (
	// DefaultAbbrev is the number of hex characters in a rendered hash.
	DefaultAbbrev = 7

	MinAbbrev = 4
	MaxAbbrev = 40
)

var longFormRe = regexp.MustCompile(`^(.*)-([0-9]+)-g([0-9a-f]{3,})$`)

// Result is the outcome of describing one commit.
type Result struct {
	// Tag is the friendly name of the nearest tag, "" when none is reachable.
	Tag string

	// Distance is the number of commits between the tag and Sha.
	Distance int

	// Sha is the full SHA of the described commit, "" for an empty repository.
	Sha string

	// Abbrev is the rendered hash length.
	Abbrev int

	// Long forces the <tag>-0-g<hash> form for exact matches.
	Long bool

	// Candidates lists the tags the search considered, in discovery order.
	Candidates []Candidate
}

// IsEmpty reports whether the repository had no commits to describe.
func (r Result) IsEmpty() bool {
	return r.Sha == ""
}

// Hash returns the abbreviated SHA.
func (r Result) Hash() string {
	n := r.Abbrev
	if n == 0 {
		n = DefaultAbbrev
	}
	return git.Abbreviate(r.Sha, n)
}

// Description returns the renderable form of the result. The hash is
// omitted for exact matches in short form, since the string carries none.
func (r Result) Description() Description {
	switch {
	case r.IsEmpty():
		return Description{}
	case r.Tag == "":
		return Description{Hash: r.Hash()}
	case r.Distance == 0 && !r.Long:
		return Description{Tag: r.Tag}
	default:
		return Description{Tag: r.Tag, Distance: r.Distance, Hash: r.Hash(), Long: r.Distance == 0}
	}
}

// String renders the result in git describe format.
func (r Result) String() string {
	return r.Description().String()
}

// Description is a describe string broken into its parts.
type Description struct {
	Tag      string
	Distance int
	Hash     string

	// Long is set for the <tag>-0-g<hash> form of an exact match.
	Long bool
}

// String renders d as <tag>, <tag>-<n>-g<hash> or <hash>.
func (d Description) String() string {
	switch {
	case d.Tag == "":
		return d.Hash
	case d.Distance == 0 && !d.Long:
		return d.Tag
	default:
		return fmt.Sprintf("%s-%d-g%s", d.Tag, d.Distance, d.Hash)
	}
}

// IsEmpty reports whether d describes nothing.
func (d Description) IsEmpty() bool {
	return d.Tag == "" && d.Hash == ""
}

// HasTag reports whether a tag was found.
func (d Description) HasTag() bool {
	return d.Tag != ""
}

// IsPlainTag reports whether d is a bare tag name with no suffix.
func (d Description) IsPlainTag() bool {
	return d.Tag != "" && d.Hash == ""
}

// ParseDescription splits a describe string. Strings of the form
// <tag>-<n>-g<hex> yield all three parts. A string of exactly abbrev
// lowercase hex characters is a bare hash. Anything else is a bare tag.
func ParseDescription(s string, abbrev int) Description {
	if s == "" {
		return Description{}
	}

	if m := longFormRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[2])
		if err == nil {
			return Description{Tag: m[1], Distance: n, Hash: m[3], Long: n == 0}
		}
	}

	if abbrev <= 0 {
		abbrev = DefaultAbbrev
	}
	if len(s) == abbrev && isLowerHex(s) {
		return Description{Hash: s}
	}

	return Description{Tag: s}
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

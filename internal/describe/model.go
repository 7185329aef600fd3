package describe

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
	"gopkg.in/yaml.v3"
)

// Model selects how exact tag matches are rendered.
type Model int

const (
	// ModelDevelop renders tags as they are.
	ModelDevelop Model = iota

	// ModelReleaseBranch renders exact matches on X.Y.0 tags in long form,
	// so minor-version tags on a development line read as snapshots. Patch
	// tags (X.Y.Z, Z > 0) are still rendered bare.
	ModelReleaseBranch
)

func (m Model) String() string {
	switch m {
	case ModelDevelop:
		return "develop"
	case ModelReleaseBranch:
		return "release-branch"
	default:
		return "unknown"
	}
}

// ParseModel parses a model name, case-insensitively. Underscores are
// accepted in place of dashes.
func ParseModel(s string) (Model, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "", "develop":
		return ModelDevelop, nil
	case "release-branch":
		return ModelReleaseBranch, nil
	default:
		return ModelDevelop, fmt.Errorf("unknown model %q (expected develop or release-branch)", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Model.
func (m *Model) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseModel(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by TOML.
func (m *Model) UnmarshalText(text []byte) error {
	parsed, err := ParseModel(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Model) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// forcesLong reports whether an exact match on tag must be rendered in
// long form under this model.
func (m Model) forcesLong(tag, prefix string) bool {
	if m != ModelReleaseBranch {
		return false
	}
	name := strings.TrimPrefix(strings.TrimPrefix(tag, prefix), "v")
	v, err := semver.Parse(name)
	if err != nil {
		return false
	}
	return v.Patch == 0 && len(v.Pre) == 0 && len(v.Build) == 0
}

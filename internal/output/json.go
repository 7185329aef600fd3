package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Format selects how variables are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text or json)", s)
	}
}

// Write writes variables in format f.
func Write(w io.Writer, f Format, variables map[string]string) error {
	if f == FormatJSON {
		return WriteJSON(w, variables)
	}
	return WriteAll(w, variables)
}

// WriteJSON writes all variables as pretty-printed JSON with sorted keys.
func WriteJSON(w io.Writer, variables map[string]string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(variables); err != nil {
		return fmt.Errorf("writing JSON output: %w", err)
	}
	return nil
}

// WriteVariable writes a single variable value. Names match
// case-insensitively.
func WriteVariable(w io.Writer, variables map[string]string, name string) error {
	for k, v := range variables {
		if strings.EqualFold(k, name) {
			_, err := fmt.Fprintln(w, v)
			return err
		}
	}
	return fmt.Errorf("unknown variable %q", name)
}

// WriteAll writes all variables as key=value lines sorted by key.
func WriteAll(w io.Writer, variables map[string]string) error {
	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, variables[k]); err != nil {
			return err
		}
	}
	return nil
}

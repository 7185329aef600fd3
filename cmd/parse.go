package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/output"
)

func newParseCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <description>",
		Short: "Split a describe string into tag, distance and hash",
		Long: `Split a string produced by "git describe --tags" into its parts.

A string of exactly --abbrev lowercase hex digits is read as a bare hash,
anything else without a -<n>-g<hash> suffix as a bare tag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := describe.ParseDescription(args[0], root.v.GetInt(keyAbbrev))
			vars := map[string]string{
				"Tag":        d.Tag,
				"Distance":   strconv.Itoa(d.Distance),
				"Hash":       d.Hash,
				"Long":       strconv.FormatBool(d.Long),
				"IsPlainTag": strconv.FormatBool(d.IsPlainTag()),
			}
			if root.showVariable != "" {
				return output.WriteVariable(cmd.OutOrStdout(), vars, root.showVariable)
			}
			f, err := output.ParseFormat(root.output)
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), f, vars)
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listShowSource bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every repository found in the search sources",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := resolver.Finder(cmd.Context())
	if err != nil {
		return err
	}

	matches, err := f.AllMatches(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, match := range matches {
		if listShowSource {
			fmt.Fprintf(out, "%-6s %s\n", match.Source.Kind, colorPath(match.Repo.String()))
		} else {
			fmt.Fprintln(out, colorPath(match.Repo.String()))
		}
	}
	return nil
}

func init() {
	listCmd.Flags().BoolVar(&listShowSource, "show-source", false, "Prefix each repository with the type of source that found it")
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find [needle]",
	Short: "Find a single repository on disk",
	Long:  "Find a single repository on disk. Without a needle, the repository enclosing the current folder is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFind,
}

func runFind(cmd *cobra.Command, args []string) error {
	f, err := resolver.Finder(cmd.Context())
	if err != nil {
		return err
	}

	match, err := f.ExpectSingle(cmd.Context(), needleOf(args))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), colorPath(match.Repo.String()))
	return nil
}

func needleOf(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(findCmd)
}

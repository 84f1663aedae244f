package cmd

import (
	"github.com/spf13/cobra"
)

var deleteLocalCmd = &cobra.Command{
	Use:   "delete-local <needle>",
	Short: "Find a single repository on disk and delete its folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteLocal,
}

func runDeleteLocal(cmd *cobra.Command, args []string) error {
	f, err := resolver.Finder(cmd.Context())
	if err != nil {
		return err
	}

	match, err := f.ExpectSingle(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return match.Repo.DeleteLocal(cmd.Context())
}

func init() {
	rootCmd.AddCommand(deleteLocalCmd)
}

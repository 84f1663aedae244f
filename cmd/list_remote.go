package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"repos-cli/vcs"
)

var listRemoteArchived bool

var listRemoteCmd = &cobra.Command{
	Use:   "list-remote",
	Short: "List the repositories of the account on the hosting provider",
	Args:  cobra.NoArgs,
	RunE:  runListRemote,
}

func runListRemote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := resolver.Client(ctx)
	if err != nil {
		return err
	}

	repos, err := vcs.ListRepositories(ctx, client, resolver.Config().GitHubUser)
	if err != nil {
		return err
	}

	for _, meta := range repos {
		if meta.Archived && !listRemoteArchived {
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), colorPath(meta.FullName()))
	}
	return nil
}

func init() {
	listRemoteCmd.Flags().BoolVar(&listRemoteArchived, "archived", false, "Include archived repositories")
	rootCmd.AddCommand(listRemoteCmd)
}

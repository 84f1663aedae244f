package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"repos-cli/repo"
	"repos-cli/resolve"
)

var cloneName string

var cloneCmd = &cobra.Command{
	Use:   "clone <needle>",
	Short: "Clone a repository of the account into the folder it belongs in",
	Long: `Clone a repository of the account into the folder it belongs in.

Repositories of alternate accounts go below the alt folder, repositories of
other owners below the foreign folder, forks below the forks folder and the
rest into the repos folder. A repository already on disk is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runClone,
}

func runClone(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	needle := args[0]

	result, err := resolver.FindAnywhere(ctx, needle)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("repository %q not found", needle)
	}

	r := result.Repo
	if result.Origin == resolve.Remote {
		parent, err := resolver.ExpectedParentFolder(ctx, r)
		if err != nil {
			return err
		}

		options := repo.CloneOptions{Https: resolver.Config().UseHttps(), Name: cloneName}
		if err := r.EnsureLocal(ctx, resolver.Git(), parent, options); err != nil {
			return err
		}
	}

	if r.IsLocal() {
		fmt.Fprintln(cmd.OutOrStdout(), colorPath(r.String()))
	}
	return nil
}

func init() {
	cloneCmd.Flags().StringVar(&cloneName, "name", "", "Folder name of the checkout (default: the repository name)")
	rootCmd.AddCommand(cloneCmd)
}

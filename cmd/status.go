package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"repos-cli/checkout"
	"repos-cli/repo"
	"repos-cli/vcs"
)

var statusCmd = &cobra.Command{
	Use:   "status [needle]",
	Short: "Show the working tree state of a repository and how far a fork trails its parent",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func printStatus(out io.Writer, status *checkout.Status) {
	if status.IsClean() {
		fmt.Fprintln(out, "clean")
	}
	if status.Ahead > 0 {
		fmt.Fprintf(out, "%-10s %d\n", "ahead", status.Ahead)
	}
	if status.Behind > 0 {
		fmt.Fprintf(out, "%-10s %d\n", "behind", status.Behind)
	}

	groups := []struct {
		label string
		paths []string
	}{
		{"conflicted", status.Conflicted},
		{"modified", status.Modified},
		{"created", status.Created},
		{"deleted", status.Deleted},
		{"renamed", status.Renamed},
		{"untracked", status.NotAdded},
	}
	for _, group := range groups {
		for _, path := range group.paths {
			fmt.Fprintf(out, "%-10s %s\n", group.label, path)
		}
	}
}

// printUpstream reports how many commits a fork is behind its parent. It is
// silent for repositories that are not forks or not on the hosting provider.
func printUpstream(cmd *cobra.Command, r *repo.Repo) error {
	ctx := cmd.Context()

	slug, err := r.RemoteOriginSlug(ctx, resolver.Git())
	if err != nil || slug == nil {
		return err
	}

	client, err := resolver.Client(ctx)
	if err != nil {
		return err
	}

	meta, err := client.FindRepository(ctx, slug.Repo, slug.Owner)
	if err != nil || meta == nil || !meta.Fork || meta.Parent == nil {
		return err
	}
	r.DeclareRemote(meta)

	compareRange, err := r.UpstreamComparisonRange()
	if err != nil {
		return err
	}

	behind, err := client.CountBehind(ctx, meta, compareRange)
	if errors.Is(err, vcs.ErrUnsupported) {
		log.Debug().Str("host", client.GetConfig().Name).Msg("Host cannot compare forks")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d commits behind %s/%s\n", behind, meta.Parent.Owner, meta.Parent.Name)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	f, err := resolver.Finder(cmd.Context())
	if err != nil {
		return err
	}

	match, err := f.ExpectSingle(cmd.Context(), needleOf(args))
	if err != nil {
		return err
	}

	status, err := match.Repo.Status(cmd.Context(), resolver.Git())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, colorPath(match.Repo.String()))
	printStatus(out, status)

	return printUpstream(cmd, match.Repo)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

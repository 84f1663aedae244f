package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"repos-cli/sync"
)

var syncOptions sync.Options

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Clone every repository of the account that is missing on disk",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	plan, err := sync.SyncRepositories(cmd.Context(), resolver, syncOptions)
	if plan != nil {
		log.Info().
			Int("missing", len(plan.Missing)).
			Int("present", len(plan.Present)).
			Int("untracked", len(plan.Untracked)).
			Msg("Sync finished")
	}
	return err
}

func init() {
	syncCmd.Flags().BoolVar(&syncOptions.IncludeArchived, "archived", false, "Also clone archived repositories")
	syncCmd.Flags().BoolVar(&syncOptions.IncludeAlts, "alts", false, "Also clone the repositories of the alternate accounts")
	syncCmd.Flags().IntVarP(&syncOptions.Jobs, "jobs", "j", 4, "Number of concurrent clones")
	rootCmd.AddCommand(syncCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listSourcesCmd = &cobra.Command{
	Use:   "list-sources",
	Short: "List the search sources in lookup order",
	Args:  cobra.NoArgs,
	RunE:  runListSources,
}

func runListSources(cmd *cobra.Command, args []string) error {
	f, err := resolver.Finder(cmd.Context())
	if err != nil {
		return err
	}

	for _, s := range f.Sources() {
		fmt.Fprintln(cmd.OutOrStdout(), s.String())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listSourcesCmd)
}

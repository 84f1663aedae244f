package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listAccountsCmd = &cobra.Command{
	Use:   "list-accounts",
	Short: "List the main and alternate accounts with their local repository counts",
	Args:  cobra.NoArgs,
	RunE:  runListAccounts,
}

func runListAccounts(cmd *cobra.Command, args []string) error {
	counts, err := resolver.CountAccounts(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rule := strings.Repeat("─", 50)
	fmt.Fprintln(out, rule)

	total := 0
	for _, count := range counts {
		label := count.Account
		if count.Main {
			label += " (main)"
		}
		fmt.Fprintf(out, "%-30s %5d repos\n", label, count.Repos)
		total += count.Repos
	}

	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "%-30s %5d repos\n", "Total", total)
	return nil
}

func init() {
	rootCmd.AddCommand(listAccountsCmd)
}

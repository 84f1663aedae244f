package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"repos-cli/constants"
)

var codePath string

var openInCodeCmd = &cobra.Command{
	Use:   "open-in-code [needle]",
	Short: "Find a repository, cloning it if needed, and open it in VS Code",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOpenInCode,
}

func runOpenInCode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	needle := needleOf(args)

	r, err := resolver.FindOrClone(ctx, needle)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("repository %q not found", needle)
	}

	if constants.IsDryRun(ctx) && !r.IsLocal() {
		return nil
	}

	folder, err := r.AsFolder()
	if err != nil {
		return err
	}

	log.Info().Str("path", folder).Msg("Opening in VS Code")
	code := exec.CommandContext(ctx, codePath, "--new-window", "--goto", folder)
	code.Stdin, code.Stdout, code.Stderr = os.Stdin, os.Stdout, os.Stderr
	return code.Run()
}

func init() {
	openInCodeCmd.Flags().StringVar(&codePath, "code-path", "code", "Path to the code executable")
	rootCmd.AddCommand(openInCodeCmd)
}

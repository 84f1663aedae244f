package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"repos-cli/resolve"
)

var goPrintOnly bool

var goCmd = &cobra.Command{
	Use:   "go [needle]",
	Short: "Open the web page of a repository in the default browser",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGo,
}

// webURL prefers the hosting metadata and falls back to the remotes of a
// local checkout.
func webURL(cmd *cobra.Command, result *resolve.Result) (string, error) {
	ctx := cmd.Context()
	r := result.Repo

	if r.IsRemote() {
		return r.HTMLURL()
	}

	slug, err := r.RemoteOriginSlug(ctx, resolver.Git())
	if err != nil {
		return "", err
	}
	if slug == nil {
		return "", fmt.Errorf("%s has no remote on a hosting provider", r)
	}

	client, err := resolver.Client(ctx)
	if err != nil {
		return "", err
	}
	meta, err := client.FindRepository(ctx, slug.Repo, slug.Owner)
	if err != nil {
		return "", err
	}
	if meta == nil {
		return "", fmt.Errorf("%s not found on %s", slug, client.GetConfig().Name)
	}

	r.DeclareRemote(meta)
	return r.HTMLURL()
}

func openBrowser(url string) error {
	var name string
	switch {
	case runtime.GOOS == "darwin":
		name = "open"
	case runtime.GOOS == "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Run()
	default:
		if _, err := os.Stat("/proc/sys/fs/binfmt_misc/WSLInterop"); err == nil {
			name = "wslview"
		} else {
			name = "xdg-open"
		}
	}
	return exec.Command(name, url).Run()
}

func runGo(cmd *cobra.Command, args []string) error {
	needle := needleOf(args)

	result, err := resolver.FindAnywhere(cmd.Context(), needle)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("repository %q not found", needle)
	}

	url, err := webURL(cmd, result)
	if err != nil {
		return err
	}

	if goPrintOnly {
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	}

	log.Info().Str("url", url).Msg("Opening in browser")
	return openBrowser(url)
}

func init() {
	goCmd.Flags().BoolVar(&goPrintOnly, "print-only", false, "Only print the URL instead of opening it")
	rootCmd.AddCommand(goCmd)
}

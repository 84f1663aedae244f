/*
Copyright © 2023 Alixinne <alixinne@pm.me>
*/
package cmd

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"repos-cli/config"
	"repos-cli/constants"
	"repos-cli/resolve"
	"repos-cli/source"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:               "repos",
	Short:             "Find, open and clone Git repositories across local folders and GitHub",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var dryRun bool
var debugMode bool
var configPath string
var rawSources []string

// overrides collects the flag values laid over the config file.
var overrides config.Config

// resolver is built once flags and config are merged.
var resolver *resolve.Context

func setupLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if !debugMode {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}
}

func loadConfig() (*config.Config, error) {
	path, optional := configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}

	cfg, err := config.LoadConfig(path, optional)
	if err != nil {
		return nil, err
	}

	overrides.Sources = nil
	for _, raw := range rawSources {
		overrides.Sources = append(overrides.Sources, source.Parse(raw))
	}

	cfg.Merge(&overrides)
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setup(cmd *cobra.Command, args []string) error {
	setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resolver, err = resolve.New(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, constants.DRY_RUN, dryRun))

	log.Debug().
		Str("repos_folder", cfg.ReposFolder).
		Str("git_backend", cfg.GitBackend).
		Bool("dry_run", dryRun).
		Msg("Configuration loaded")

	return nil
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "Dry-run mode")
	flags.BoolVarP(&debugMode, "debug", "D", false, "Debug mode")
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/repos-cli/config.yml)")

	flags.StringVar(&overrides.ReposFolder, "repos-folder", "", "Folder holding your own repositories (default ~/repos)")
	flags.StringVar(&overrides.ForksFolder, "forks-folder", "", "Folder holding your forks (default <repos-folder>/.fork)")
	flags.StringVar(&overrides.GistFolder, "gist-folder", "", "Folder holding your gists (default <repos-folder>/.gist)")
	flags.StringVar(&overrides.ForeignFolder, "foreign-folder", "", "Folder holding repositories of other owners (default <repos-folder>/.foreign)")
	flags.StringVar(&overrides.AltFolder, "alt-folder", "", "Folder holding repositories of alternate accounts (default <repos-folder>/.as)")
	flags.StringSliceVar(&overrides.Alt, "alt", nil, "Alternate accounts (default: subfolders of the alt folder)")
	flags.StringVar(&overrides.GitHubUser, "github-user", "", "GitHub user (default $GITHUB_USER)")
	flags.StringVar(&overrides.CloneBackend, "clone-backend", "", "Clone over ssh or https")
	flags.StringVar(&overrides.GitBackend, "git-backend", "", "Local git implementation, libgit2 or go-git")

	flags.StringArrayVarP(&overrides.Parents, "parent", "p", nil, "Folder whose subfolders are repositories")
	flags.StringArrayVarP(&overrides.Globs, "glob", "g", nil, "Glob pattern matching repository folders")
	flags.StringArrayVarP(&rawSources, "source", "s", nil, "Search source, its type inferred from the input")
}

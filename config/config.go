package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"repos-cli/constants"
	"repos-cli/source"
)

var ErrMissingEnv = errors.New("missing environment variable")

type Config struct {
	ReposFolder   string          `yaml:"repos_folder"`
	ForksFolder   string          `yaml:"forks_folder"`
	GistFolder    string          `yaml:"gist_folder"`
	ForeignFolder string          `yaml:"foreign_folder"`
	AltFolder     string          `yaml:"alt_folder"`
	Alt           []string        `yaml:"alt"`
	GitHubUser    string          `yaml:"github_user"`
	CloneBackend  string          `yaml:"clone_backend"`
	GitBackend    string          `yaml:"git_backend"`
	Parents       []string        `yaml:"parents"`
	Globs         []string        `yaml:"globs"`
	Sources       []source.Source `yaml:"sources"`
	Host          Host            `yaml:"host"`
}

type Host struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	BaseUrl string `yaml:"base"`
	Token   string `yaml:"token"`
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "repos-cli", "config.yml")
	}
	return filepath.Join(home, ".config", "repos-cli", "config.yml")
}

func readEnvVar(logger zerolog.Logger, val *string) error {
	if strings.HasPrefix(*val, "$") {
		name := strings.TrimPrefix(*val, "$")
		value, exists := os.LookupEnv(name)
		if !exists {
			return fmt.Errorf("%w %s", ErrMissingEnv, *val)
		}
		logger.Debug().Msgf("Looked up value from %s", *val)
		*val = value
	}

	return nil
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (host *Host) massageConfig() error {
	logger := log.With().Str("host", host.Name).Logger()

	if host.Type == "" {
		host.Type = "github"
	}

	switch host.Type {
	case "github":
		if host.BaseUrl == "" {
			host.BaseUrl = "https://github.com"
		}
		if host.Token == "" {
			host.Token = os.Getenv("GITHUB_TOKEN")
		}
	case "gitea":
		if host.BaseUrl == "" {
			return errors.New("a base url is required for a gitea host")
		}
		if host.Token == "" {
			host.Token = os.Getenv("GITEA_TOKEN")
		}
	default:
		return fmt.Errorf("invalid host type: %s", host.Type)
	}

	if host.Name == "" {
		logger.Debug().Msgf("Defaulted name to type (%s)", host.Type)
		host.Name = host.Type
	}

	if err := readEnvVar(logger, &host.Token); err != nil {
		return err
	}

	return readEnvVar(logger, &host.BaseUrl)
}

// Finalize applies defaults, expands paths and validates the result. It is
// called once all layers (file, flags) have been merged.
func (config *Config) Finalize() error {
	if config.ReposFolder == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		config.ReposFolder = filepath.Join(home, "repos")
	}
	config.ReposFolder = ExpandHome(config.ReposFolder)

	defaults := []struct {
		field  *string
		bucket string
	}{
		{&config.ForksFolder, constants.FORKS_FOLDER},
		{&config.GistFolder, constants.GISTS_FOLDER},
		{&config.ForeignFolder, constants.FOREIGN_FOLDER},
		{&config.AltFolder, constants.ALT_FOLDER},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = filepath.Join(config.ReposFolder, d.bucket)
		}
		*d.field = ExpandHome(*d.field)
	}

	folders := []*string{&config.ReposFolder, &config.ForksFolder, &config.GistFolder, &config.ForeignFolder, &config.AltFolder}
	for i := range config.Parents {
		config.Parents[i] = ExpandHome(config.Parents[i])
		folders = append(folders, &config.Parents[i])
	}
	// compared with finder output, which is absolute and clean
	for _, folder := range folders {
		absolute, err := filepath.Abs(*folder)
		if err != nil {
			return err
		}
		*folder = absolute
	}
	for i := range config.Globs {
		config.Globs[i] = ExpandHome(config.Globs[i])
	}
	for i := range config.Sources {
		config.Sources[i].Input = ExpandHome(config.Sources[i].Input)
	}

	if config.GitHubUser == "" {
		config.GitHubUser = os.Getenv("GITHUB_USER")
	}

	if config.CloneBackend == "" {
		config.CloneBackend = "ssh"
	}
	if config.CloneBackend != "ssh" && config.CloneBackend != "https" {
		return fmt.Errorf("invalid clone backend: %s", config.CloneBackend)
	}

	if config.GitBackend == "" {
		config.GitBackend = "libgit2"
	}
	if config.GitBackend != "libgit2" && config.GitBackend != "go-git" {
		return fmt.Errorf("invalid git backend: %s", config.GitBackend)
	}

	if err := config.Host.massageConfig(); err != nil {
		log.Error().Err(err).Msg("Failed to parse host config")
		return err
	}

	return nil
}

// Merge lays overrides on top of the configuration. Set scalars replace the
// file values; lists are prepended so they are searched first.
func (config *Config) Merge(overrides *Config) {
	scalars := []struct {
		field    *string
		override string
	}{
		{&config.ReposFolder, overrides.ReposFolder},
		{&config.ForksFolder, overrides.ForksFolder},
		{&config.GistFolder, overrides.GistFolder},
		{&config.ForeignFolder, overrides.ForeignFolder},
		{&config.AltFolder, overrides.AltFolder},
		{&config.GitHubUser, overrides.GitHubUser},
		{&config.CloneBackend, overrides.CloneBackend},
		{&config.GitBackend, overrides.GitBackend},
	}
	for _, s := range scalars {
		if s.override != "" {
			*s.field = s.override
		}
	}

	if len(overrides.Alt) > 0 {
		config.Alt = overrides.Alt
	}

	config.Parents = append(append([]string{}, overrides.Parents...), config.Parents...)
	config.Globs = append(append([]string{}, overrides.Globs...), config.Globs...)
	config.Sources = append(append([]source.Source{}, overrides.Sources...), config.Sources...)
}

// UseHttps reports whether clones should go over HTTPS instead of SSH.
func (config *Config) UseHttps() bool {
	return config.CloneBackend == "https"
}

// LoadConfig reads the file at path. When optional is set a missing file
// yields an empty configuration.
func LoadConfig(path string, optional bool) (*Config, error) {
	var config Config

	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", path).Msg("No config file, using defaults")
			return &config, nil
		}
		return nil, err
	}

	err = yaml.Unmarshal(raw, &config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &config, nil
}

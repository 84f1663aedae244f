// Package resolve ties local sources and the hosting account together: it
// gathers search sources, finds repositories locally or remotely and decides
// where a remote repository belongs on disk.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"repos-cli/checkout"
	"repos-cli/config"
	"repos-cli/finder"
	"repos-cli/repo"
	"repos-cli/source"
	"repos-cli/vcs"
	"repos-cli/vcs/repository"
)

var (
	ErrNoNeedle   = errors.New("no needle provided")
	ErrNoIdentity = errors.New("unknown account, set a token or a GitHub user")
)

type ClientFactory func(ctx context.Context) (vcs.Vcs, error)

type Origin int

const (
	Local Origin = iota
	Remote
)

func (origin Origin) String() string {
	if origin == Local {
		return "local"
	}
	return "remote"
}

type Result struct {
	Repo   *repo.Repo
	Origin Origin
	// Match is set for local results only.
	Match *finder.Match
}

type Context struct {
	config    *config.Config
	git       checkout.Git
	newClient ClientFactory
	cwd       string

	client   lazy[vcs.Vcs]
	identity lazy[string]
	alts     lazy[[]string]
}

type Option func(*Context)

func WithClientFactory(factory ClientFactory) Option {
	return func(c *Context) {
		c.newClient = factory
	}
}

func WithGit(g checkout.Git) Option {
	return func(c *Context) {
		c.git = g
	}
}

func WithWorkingDirectory(cwd string) Option {
	return func(c *Context) {
		c.cwd = cwd
	}
}

// New expects a finalized configuration.
func New(config *config.Config, options ...Option) (*Context, error) {
	c := &Context{config: config}
	for _, option := range options {
		option(c)
	}

	if c.git == nil {
		g, err := checkout.New(config.GitBackend)
		if err != nil {
			return nil, err
		}
		c.git = g
	}

	if c.newClient == nil {
		host := config.Host
		c.newClient = func(ctx context.Context) (vcs.Vcs, error) {
			return vcs.NewClient(ctx, host)
		}
	}

	return c, nil
}

func (c *Context) Config() *config.Config {
	return c.config
}

func (c *Context) Git() checkout.Git {
	return c.git
}

func (c *Context) Client(ctx context.Context) (vcs.Vcs, error) {
	return c.client.get(func() (vcs.Vcs, error) {
		return c.newClient(ctx)
	})
}

// Identity is the login of the authenticated account, or the configured user
// when no token is available.
func (c *Context) Identity(ctx context.Context) (string, error) {
	return c.identity.get(func() (string, error) {
		client, err := c.Client(ctx)
		if err != nil {
			return "", err
		}

		if client.HasToken() {
			return client.GetAuthenticatedUser(ctx)
		}

		if c.config.GitHubUser != "" {
			return c.config.GitHubUser, nil
		}

		return "", ErrNoIdentity
	})
}

// EffectiveOwner is the account remote lookups run under: the configured user
// if any, else the authenticated identity.
func (c *Context) EffectiveOwner(ctx context.Context) (string, error) {
	if c.config.GitHubUser != "" {
		return c.config.GitHubUser, nil
	}
	return c.Identity(ctx)
}

// Alt returns the configured alternate identities, or discovers them from the
// subfolders of the alt folder.
func (c *Context) Alt(ctx context.Context) ([]string, error) {
	return c.alts.get(func() ([]string, error) {
		if len(c.config.Alt) > 0 {
			return c.config.Alt, nil
		}

		entries, err := os.ReadDir(c.config.AltFolder)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return []string{}, nil
			}
			return nil, err
		}

		alts := []string{}
		for _, entry := range entries {
			if entry.IsDir() {
				alts = append(alts, entry.Name())
			}
		}

		log.Debug().Strs("alts", alts).Msg("Discovered alt accounts")
		return alts, nil
	})
}

func (c *Context) GatherSources(ctx context.Context) ([]source.Source, error) {
	sources := []source.Source{
		{Input: c.config.ReposFolder, Kind: source.Parent},
		{Input: c.config.ForksFolder, Kind: source.Parent},
		{Input: c.config.GistFolder, Kind: source.Parent},
		{Input: filepath.Join(c.config.ForeignFolder, "*", "*"), Kind: source.Glob},
	}

	alts, err := c.Alt(ctx)
	if err != nil {
		return nil, err
	}
	for _, alt := range alts {
		sources = append(sources, source.Source{Input: filepath.Join(c.config.AltFolder, alt), Kind: source.Parent})
	}

	for _, parent := range c.config.Parents {
		sources = append(sources, source.Source{Input: parent, Kind: source.Parent})
	}
	for _, glob := range c.config.Globs {
		sources = append(sources, source.Source{Input: glob, Kind: source.Glob})
	}
	for _, s := range c.config.Sources {
		sources = append(sources, source.Normalize(s))
	}

	return sources, nil
}

func (c *Context) Finder(ctx context.Context) (*finder.Finder, error) {
	sources, err := c.GatherSources(ctx)
	if err != nil {
		return nil, err
	}
	return finder.FromSources(c.cwd, sources...), nil
}

// FindLocal searches the gathered sources. An empty needle resolves the
// repository enclosing the working directory.
func (c *Context) FindLocal(ctx context.Context, needle string) (*finder.Match, error) {
	f, err := c.Finder(ctx)
	if err != nil {
		return nil, err
	}
	return f.FindByName(ctx, needle)
}

// FindAnywhere prefers a local checkout and only asks the hosting provider
// when nothing on disk matches.
func (c *Context) FindAnywhere(ctx context.Context, needle string) (*Result, error) {
	match, err := c.FindLocal(ctx, needle)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return &Result{Repo: match.Repo, Origin: Local, Match: match}, nil
	}

	if needle == "" {
		return nil, ErrNoNeedle
	}

	meta, err := c.findRemote(ctx, needle)
	if err != nil || meta == nil {
		return nil, err
	}

	return &Result{Repo: repo.FromRemote(meta), Origin: Remote}, nil
}

func (c *Context) findRemote(ctx context.Context, needle string) (*repository.Metadata, error) {
	client, err := c.Client(ctx)
	if err != nil {
		return nil, err
	}

	owner, err := c.EffectiveOwner(ctx)
	if err != nil {
		return nil, err
	}

	alts, err := c.Alt(ctx)
	if err != nil {
		return nil, err
	}

	for _, account := range append([]string{owner}, alts...) {
		meta, err := client.FindRepository(ctx, needle, account)
		if err != nil {
			return nil, fmt.Errorf("looking up %s/%s: %w", account, needle, err)
		}
		if meta != nil {
			return meta, nil
		}
	}

	return nil, nil
}

// FindOrClone returns a local repository, cloning a remote-only one into its
// expected folder first.
func (c *Context) FindOrClone(ctx context.Context, needle string) (*repo.Repo, error) {
	result, err := c.FindAnywhere(ctx, needle)
	if err != nil || result == nil {
		return nil, err
	}

	if result.Origin == Local {
		return result.Repo, nil
	}

	parent, err := c.ExpectedParentFolder(ctx, result.Repo)
	if err != nil {
		return nil, err
	}

	err = result.Repo.EnsureLocal(ctx, c.git, parent, repo.CloneOptions{Https: c.config.UseHttps()})
	if err != nil {
		return nil, err
	}

	return result.Repo, nil
}

func sameAccount(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ExpectedParentFolder decides where a remote repository lives on disk:
// alt accounts first, then foreign owners, then forks, then the repos folder.
func (c *Context) ExpectedParentFolder(ctx context.Context, r *repo.Repo) (string, error) {
	meta, err := r.Remote()
	if err != nil {
		return "", err
	}

	alts, err := c.Alt(ctx)
	if err != nil {
		return "", err
	}
	for _, alt := range alts {
		if sameAccount(alt, meta.Owner) {
			return filepath.Join(c.config.AltFolder, alt), nil
		}
	}

	identity, err := c.Identity(ctx)
	if err != nil {
		return "", err
	}

	if !sameAccount(identity, meta.Owner) {
		return filepath.Join(c.config.ForeignFolder, meta.Owner), nil
	}

	if meta.Fork {
		return c.config.ForksFolder, nil
	}

	return c.config.ReposFolder, nil
}

func (c *Context) ExpectedFolder(ctx context.Context, r *repo.Repo, folderName string) (string, error) {
	parent, err := c.ExpectedParentFolder(ctx, r)
	if err != nil {
		return "", err
	}

	if folderName == "" {
		folderName = r.Name()
	}

	return filepath.Join(parent, folderName), nil
}

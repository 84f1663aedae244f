// Package repo holds the repository handle shared by local lookups and remote
// queries. A handle knows its checkout folder, its hosting metadata, or both.
package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"repos-cli/checkout"
	"repos-cli/constants"
	"repos-cli/vcs/repository"
)

// MisuseError is returned when an operation needs a facet the handle lacks.
type MisuseError struct {
	Expected string
	Actual   string
}

func (err *MisuseError) Error() string {
	return fmt.Sprintf("expected %s repo, got %s", err.Expected, err.Actual)
}

type local struct {
	parentFolder string
	folderName   string
}

type Repo struct {
	local  *local
	remote *repository.Metadata
}

// FromFolder builds a local handle. Pointing at the .git directory itself
// resolves to the repository that contains it.
func FromFolder(folder string) (*Repo, error) {
	absolute, err := filepath.Abs(folder)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(absolute)
	parent := filepath.Dir(absolute)
	if name == constants.GIT_FOLDER {
		return FromFolder(parent)
	}

	return FromLocal(name, parent), nil
}

func FromLocal(name, parentFolder string) *Repo {
	repo := &Repo{}
	repo.DeclareLocal(parentFolder, name)
	return repo
}

func FromRemote(meta *repository.Metadata) *Repo {
	repo := &Repo{}
	repo.DeclareRemote(meta)
	return repo
}

func (repo *Repo) DeclareLocal(parentFolder, folderName string) {
	repo.local = &local{parentFolder: parentFolder, folderName: folderName}
}

func (repo *Repo) DeclareRemote(meta *repository.Metadata) {
	repo.remote = meta
}

func (repo *Repo) IsLocal() bool {
	return repo.local != nil
}

func (repo *Repo) IsRemote() bool {
	return repo.remote != nil
}

func (repo *Repo) ExpectLocal() error {
	if repo.IsLocal() {
		return nil
	}
	return &MisuseError{Expected: "local", Actual: "remote repo: " + repo.remote.FullName()}
}

func (repo *Repo) ExpectRemote() error {
	if repo.IsRemote() {
		return nil
	}
	return &MisuseError{Expected: "remote", Actual: "local repo: " + repo.folder()}
}

func (repo *Repo) folder() string {
	return filepath.Join(repo.local.parentFolder, repo.local.folderName)
}

// Name is the folder name of a local handle, else the remote name.
func (repo *Repo) Name() string {
	if repo.IsLocal() {
		return repo.local.folderName
	}
	return repo.remote.Name
}

func (repo *Repo) ParentFolder() (string, error) {
	if err := repo.ExpectLocal(); err != nil {
		return "", err
	}
	return repo.local.parentFolder, nil
}

func (repo *Repo) Remote() (*repository.Metadata, error) {
	if err := repo.ExpectRemote(); err != nil {
		return nil, err
	}
	return repo.remote, nil
}

func (repo *Repo) Owner() (string, error) {
	if err := repo.ExpectRemote(); err != nil {
		return "", err
	}
	return repo.remote.Owner, nil
}

func (repo *Repo) AsFolder() (string, error) {
	if err := repo.ExpectLocal(); err != nil {
		return "", err
	}
	return repo.folder(), nil
}

func (repo *Repo) AsSlug() (string, error) {
	if err := repo.ExpectRemote(); err != nil {
		return "", err
	}
	return repo.remote.FullName(), nil
}

func (repo *Repo) HTMLURL() (string, error) {
	if err := repo.ExpectRemote(); err != nil {
		return "", err
	}
	return repo.remote.HTMLURL, nil
}

func (repo *Repo) String() string {
	if repo.IsLocal() {
		return repo.folder()
	}
	return repo.remote.FullName()
}

type CloneOptions struct {
	Https bool
	// Name overrides the folder name, which defaults to the remote name.
	Name string
}

func (repo *Repo) targetName(options CloneOptions) string {
	if options.Name != "" {
		return options.Name
	}
	return repo.remote.Name
}

// Clone checks the remote repository out below parentFolder and attaches the
// local facet.
func (repo *Repo) Clone(ctx context.Context, g checkout.Git, parentFolder string, options CloneOptions) error {
	if err := repo.ExpectRemote(); err != nil {
		return err
	}

	name := repo.targetName(options)
	target := filepath.Join(parentFolder, name)
	url := repo.remote.GetCloneUrl(options.Https)

	logger := log.With().Str("repository", repo.remote.FullName()).Logger()

	if constants.IsDryRun(ctx) {
		logger.Info().Str("path", target).Msg("Would clone the repository, but dry-run mode is enabled")
		return nil
	}

	if err := os.MkdirAll(parentFolder, 0o755); err != nil {
		return err
	}

	logger.Info().Str("clone_url", url).Str("path", target).Msg("Cloning repository")
	if err := g.Clone(ctx, url, target); err != nil {
		return fmt.Errorf("cloning %s: %w", repo.remote.FullName(), err)
	}

	repo.DeclareLocal(parentFolder, name)
	return nil
}

// EnsureLocal attaches the local facet, cloning only when the target folder
// does not exist yet.
func (repo *Repo) EnsureLocal(ctx context.Context, g checkout.Git, parentFolder string, options CloneOptions) error {
	if repo.IsLocal() {
		return nil
	}
	if err := repo.ExpectRemote(); err != nil {
		return err
	}

	name := repo.targetName(options)
	target := filepath.Join(parentFolder, name)

	_, err := os.Stat(target)
	if err == nil {
		log.Debug().Str("path", target).Msg("Repository already present on disk")
		repo.DeclareLocal(parentFolder, name)
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return repo.Clone(ctx, g, parentFolder, options)
}

func (repo *Repo) DeleteLocal(ctx context.Context) error {
	folder, err := repo.AsFolder()
	if err != nil {
		return err
	}

	if constants.IsDryRun(ctx) {
		log.Info().Str("path", folder).Msg("Would delete the repository, but dry-run mode is enabled")
		return nil
	}

	log.Info().Str("path", folder).Msg("Deleting repository")
	return os.RemoveAll(folder)
}

func (repo *Repo) Status(ctx context.Context, g checkout.Git) (*checkout.Status, error) {
	folder, err := repo.AsFolder()
	if err != nil {
		return nil, err
	}
	return g.Status(ctx, folder)
}

// RemoteOriginSlug reads the hosting slug from the configured remotes,
// preferring origin, then upstream, then whatever else is configured. It
// returns nil when no remote points at a hosting provider.
func (repo *Repo) RemoteOriginSlug(ctx context.Context, g checkout.Git) (*Slug, error) {
	folder, err := repo.AsFolder()
	if err != nil {
		return nil, err
	}

	remotes, err := g.ListRemotes(ctx, folder)
	if err != nil {
		return nil, err
	}

	for _, remote := range orderRemotes(remotes) {
		if slug := ParseSlug(remote.Fetch); slug != nil {
			return slug, nil
		}
	}

	return nil, nil
}

func orderRemotes(remotes []checkout.Remote) []checkout.Remote {
	ordered := make([]checkout.Remote, 0, len(remotes))
	for _, preferred := range []string{"origin", "upstream"} {
		for _, remote := range remotes {
			if remote.Name == preferred {
				ordered = append(ordered, remote)
			}
		}
	}
	for _, remote := range remotes {
		if remote.Name != "origin" && remote.Name != "upstream" {
			ordered = append(ordered, remote)
		}
	}
	return ordered
}

func (repo *Repo) IsFork() (bool, error) {
	if err := repo.ExpectRemote(); err != nil {
		return false, err
	}
	return repo.remote.Fork, nil
}

// UpstreamComparisonRange returns "upstreamOwner:branch...forkOwner:branch",
// the compare range whose behind count is how far the fork trails upstream.
func (repo *Repo) UpstreamComparisonRange() (string, error) {
	if err := repo.ExpectRemote(); err != nil {
		return "", err
	}

	meta := repo.remote
	if !meta.Fork || meta.Parent == nil {
		return "", fmt.Errorf("%s is not a fork with a known parent", meta.FullName())
	}

	return fmt.Sprintf("%s:%s...%s:%s", meta.Parent.Owner, meta.Parent.DefaultBranch, meta.Owner, meta.DefaultBranch), nil
}

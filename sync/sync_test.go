package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repos-cli/checkout"
	"repos-cli/config"
	"repos-cli/constants"
	"repos-cli/repo"
	"repos-cli/resolve"
	"repos-cli/vcs"
	"repos-cli/vcs/repository"
)

type fakeVcs struct {
	login string
	repos map[string][]*repository.Metadata
}

func (f *fakeVcs) GetConfig() *config.Host {
	return &config.Host{Name: "fake", Type: "github"}
}

func (f *fakeVcs) HasToken() bool {
	return true
}

func (f *fakeVcs) GetAuthenticatedUser(ctx context.Context) (string, error) {
	return f.login, nil
}

func (f *fakeVcs) FindRepository(ctx context.Context, name, owner string) (*repository.Metadata, error) {
	return nil, nil
}

func (f *fakeVcs) ListRepositoriesForUser(ctx context.Context, user string) ([]*repository.Metadata, error) {
	return f.repos[user], nil
}

func (f *fakeVcs) ListRepositoriesForAuthenticatedUser(ctx context.Context) ([]*repository.Metadata, error) {
	return f.repos[f.login], nil
}

func (f *fakeVcs) CountBehind(ctx context.Context, meta *repository.Metadata, compareRange string) (int, error) {
	return 0, vcs.ErrUnsupported
}

type fakeGit struct {
	mutex  gosync.Mutex
	clones []string
	fail   map[string]bool
}

func (g *fakeGit) Clone(ctx context.Context, url, destFolder string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.fail[filepath.Base(destFolder)] {
		return errors.New("connection reset")
	}
	g.clones = append(g.clones, destFolder)
	return os.MkdirAll(filepath.Join(destFolder, ".git"), 0o755)
}

func (g *fakeGit) ListRemotes(ctx context.Context, folder string) ([]checkout.Remote, error) {
	return nil, nil
}

func (g *fakeGit) Status(ctx context.Context, folder string) (*checkout.Status, error) {
	return &checkout.Status{}, nil
}

func setup(t *testing.T, client *fakeVcs, g *fakeGit, alts ...string) (*resolve.Context, string) {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		ReposFolder:   root,
		ForksFolder:   filepath.Join(root, ".fork"),
		GistFolder:    filepath.Join(root, ".gist"),
		ForeignFolder: filepath.Join(root, ".foreign"),
		AltFolder:     filepath.Join(root, ".as"),
		Alt:           alts,
		CloneBackend:  "https",
		GitBackend:    "go-git",
	}

	resolver, err := resolve.New(cfg,
		resolve.WithGit(g),
		resolve.WithWorkingDirectory(root),
		resolve.WithClientFactory(func(ctx context.Context) (vcs.Vcs, error) { return client, nil }),
	)
	require.NoError(t, err)

	return resolver, root
}

func meta(owner, name string) *repository.Metadata {
	return &repository.Metadata{
		Owner:    owner,
		Name:     name,
		CloneURL: "https://github.com/" + owner + "/" + name + ".git",
	}
}

func TestCompare(t *testing.T) {
	present := Entry{Repo: repo.FromRemote(meta("alice", "a")), Folder: "/repos/a"}
	missing := Entry{Repo: repo.FromRemote(meta("alice", "b")), Folder: "/repos/b"}

	plan := Compare([]Entry{present, missing}, []string{"/repos/a", "/repos/z", "/elsewhere/c"})

	assert.Equal(t, []Entry{present}, plan.Present)
	assert.Equal(t, []Entry{missing}, plan.Missing)
	assert.Equal(t, []string{"/repos/z"}, plan.Untracked)
	assert.Equal(t, 2, plan.Len())
}

func TestSyncRepositories(t *testing.T) {
	archived := meta("alice", "old")
	archived.Archived = true
	fork := meta("alice", "patched")
	fork.Fork = true

	client := &fakeVcs{login: "alice", repos: map[string][]*repository.Metadata{
		"alice": {meta("alice", "tool"), meta("alice", "existing"), fork, archived},
		"bob":   {meta("bob", "side")},
	}}
	g := &fakeGit{}
	resolver, root := setup(t, client, g, "bob")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "existing", ".git"), 0o755))

	plan, err := SyncRepositories(context.Background(), resolver, Options{IncludeAlts: true})
	require.NoError(t, err)

	assert.Len(t, plan.Present, 1)
	assert.Len(t, plan.Missing, 3)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "tool"),
		filepath.Join(root, ".fork", "patched"),
		filepath.Join(root, ".as", "bob", "side"),
	}, g.clones)
	assert.NoDirExists(t, filepath.Join(root, "old"))

	// a second run finds everything in place
	again, err := SyncRepositories(context.Background(), resolver, Options{IncludeAlts: true})
	require.NoError(t, err)
	assert.Empty(t, again.Missing)
	assert.Len(t, again.Present, 4)
	assert.Len(t, g.clones, 3)
}

func TestSyncRepositoriesIncludeArchived(t *testing.T) {
	archived := meta("alice", "old")
	archived.Archived = true

	client := &fakeVcs{login: "alice", repos: map[string][]*repository.Metadata{"alice": {archived}}}
	g := &fakeGit{}
	resolver, root := setup(t, client, g)

	_, err := SyncRepositories(context.Background(), resolver, Options{IncludeArchived: true, Jobs: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "old")}, g.clones)
}

func TestSyncRepositoriesReportsFailures(t *testing.T) {
	client := &fakeVcs{login: "alice", repos: map[string][]*repository.Metadata{
		"alice": {meta("alice", "good"), meta("alice", "bad")},
	}}
	g := &fakeGit{fail: map[string]bool{"bad": true}}
	resolver, root := setup(t, client, g)

	_, err := SyncRepositories(context.Background(), resolver, Options{})
	assert.EqualError(t, err, "1 of 2 repositories failed to sync")
	assert.Equal(t, []string{filepath.Join(root, "good")}, g.clones)
}

func TestSyncRepositoriesDryRun(t *testing.T) {
	client := &fakeVcs{login: "alice", repos: map[string][]*repository.Metadata{
		"alice": {meta("alice", "tool")},
	}}
	g := &fakeGit{}
	resolver, root := setup(t, client, g)

	ctx := context.WithValue(context.Background(), constants.DRY_RUN, true)
	plan, err := SyncRepositories(ctx, resolver, Options{})
	require.NoError(t, err)
	assert.Len(t, plan.Missing, 1)
	assert.Empty(t, g.clones)
	assert.NoDirExists(t, filepath.Join(root, "tool"))
}

func TestBuildPlanWithRelativeReposFolder(t *testing.T) {
	t.Setenv("GITHUB_USER", "")
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "repos", "tool", ".git"), 0o755))
	t.Chdir(root)

	cfg := &config.Config{ReposFolder: "repos", GitBackend: "go-git"}
	require.NoError(t, cfg.Finalize())

	client := &fakeVcs{login: "alice", repos: map[string][]*repository.Metadata{
		"alice": {meta("alice", "tool"), meta("alice", "other")},
	}}
	resolver, err := resolve.New(cfg,
		resolve.WithGit(&fakeGit{}),
		resolve.WithClientFactory(func(ctx context.Context) (vcs.Vcs, error) { return client, nil }),
	)
	require.NoError(t, err)

	plan, err := BuildPlan(context.Background(), resolver, Options{})
	require.NoError(t, err)
	require.Len(t, plan.Present, 1)
	assert.Equal(t, filepath.Join(root, "repos", "tool"), plan.Present[0].Folder)
	require.Len(t, plan.Missing, 1)
	assert.Equal(t, filepath.Join(root, "repos", "other"), plan.Missing[0].Folder)
}

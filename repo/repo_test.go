package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repos-cli/checkout"
	"repos-cli/constants"
	"repos-cli/vcs/repository"
)

type fakeGit struct {
	clones  []string
	remotes []checkout.Remote
}

func (g *fakeGit) Clone(ctx context.Context, url, destFolder string) error {
	g.clones = append(g.clones, url)
	return os.MkdirAll(filepath.Join(destFolder, ".git"), 0o755)
}

func (g *fakeGit) ListRemotes(ctx context.Context, folder string) ([]checkout.Remote, error) {
	return g.remotes, nil
}

func (g *fakeGit) Status(ctx context.Context, folder string) (*checkout.Status, error) {
	return &checkout.Status{}, nil
}

func toolMetadata() *repository.Metadata {
	return &repository.Metadata{
		Owner:         "alice",
		Name:          "tool",
		DefaultBranch: "main",
		CloneURL:      "https://github.com/alice/tool.git",
		SSHURL:        "git@github.com:alice/tool.git",
	}
}

func TestFromFolderUnwrapsGitDir(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "project")

	direct, err := FromFolder(folder)
	require.NoError(t, err)
	viaGit, err := FromFolder(filepath.Join(folder, ".git"))
	require.NoError(t, err)

	assert.Equal(t, direct, viaGit)
	assert.Equal(t, "project", viaGit.Name())

	asFolder, err := viaGit.AsFolder()
	require.NoError(t, err)
	assert.Equal(t, folder, asFolder)
}

func TestFromFolderCleansPath(t *testing.T) {
	base := t.TempDir()
	r, err := FromFolder(filepath.Join(base, "a", "..", "project") + "/")
	require.NoError(t, err)

	folder, err := r.AsFolder()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "project"), folder)
}

func TestFacetGuards(t *testing.T) {
	local := FromLocal("tool", "/src")
	remote := FromRemote(toolMetadata())

	_, err := local.AsSlug()
	var misuse *MisuseError
	require.True(t, errors.As(err, &misuse))
	assert.Equal(t, "remote", misuse.Expected)
	assert.Equal(t, "expected remote repo, got local repo: /src/tool", err.Error())

	_, err = remote.AsFolder()
	require.True(t, errors.As(err, &misuse))
	assert.Equal(t, "expected local repo, got remote repo: alice/tool", err.Error())

	slug, err := remote.AsSlug()
	require.NoError(t, err)
	assert.Equal(t, "alice/tool", slug)

	assert.Equal(t, "/src/tool", local.String())
	assert.Equal(t, "alice/tool", remote.String())
}

func TestCloneAttachesLocal(t *testing.T) {
	g := &fakeGit{}
	parent := filepath.Join(t.TempDir(), "nested", "parent")
	r := FromRemote(toolMetadata())

	require.NoError(t, r.Clone(context.Background(), g, parent, CloneOptions{}))

	assert.Equal(t, []string{"git@github.com:alice/tool.git"}, g.clones)
	assert.True(t, r.IsLocal())
	assert.True(t, r.IsRemote())
	folder, err := r.AsFolder()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "tool"), folder)
}

func TestCloneHttpsWithName(t *testing.T) {
	g := &fakeGit{}
	parent := t.TempDir()
	r := FromRemote(toolMetadata())

	require.NoError(t, r.Clone(context.Background(), g, parent, CloneOptions{Https: true, Name: "tool-2"}))

	assert.Equal(t, []string{"https://github.com/alice/tool.git"}, g.clones)
	assert.Equal(t, "tool-2", r.Name())
}

func TestCloneDryRun(t *testing.T) {
	g := &fakeGit{}
	ctx := context.WithValue(context.Background(), constants.DRY_RUN, true)
	r := FromRemote(toolMetadata())

	require.NoError(t, r.Clone(ctx, g, t.TempDir(), CloneOptions{}))
	assert.Empty(t, g.clones)
	assert.False(t, r.IsLocal())
}

func TestCloneRequiresRemote(t *testing.T) {
	err := FromLocal("tool", "/src").Clone(context.Background(), &fakeGit{}, t.TempDir(), CloneOptions{})
	var misuse *MisuseError
	assert.ErrorAs(t, err, &misuse)
}

func TestEnsureLocalClonesOnce(t *testing.T) {
	g := &fakeGit{}
	parent := t.TempDir()
	r := FromRemote(toolMetadata())

	require.NoError(t, r.EnsureLocal(context.Background(), g, parent, CloneOptions{}))
	require.NoError(t, r.EnsureLocal(context.Background(), g, parent, CloneOptions{}))

	assert.Len(t, g.clones, 1)
	folder, err := r.AsFolder()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "tool"), folder)
}

func TestEnsureLocalAdoptsExistingFolder(t *testing.T) {
	g := &fakeGit{}
	parent := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "tool"), 0o755))

	r := FromRemote(toolMetadata())
	require.NoError(t, r.EnsureLocal(context.Background(), g, parent, CloneOptions{}))

	assert.Empty(t, g.clones)
	assert.True(t, r.IsLocal())
}

func TestDeleteLocal(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "tool", ".git"), 0o755))
	r := FromLocal("tool", parent)

	dry := context.WithValue(context.Background(), constants.DRY_RUN, true)
	require.NoError(t, r.DeleteLocal(dry))
	assert.DirExists(t, filepath.Join(parent, "tool"))

	require.NoError(t, r.DeleteLocal(context.Background()))
	assert.NoDirExists(t, filepath.Join(parent, "tool"))
}

func TestRemoteOriginSlugPreference(t *testing.T) {
	tests := []struct {
		name    string
		remotes []checkout.Remote
		want    *Slug
	}{
		{
			name: "origin first",
			remotes: []checkout.Remote{
				{Name: "fork", Fetch: "git@github.com:carol/tool.git"},
				{Name: "upstream", Fetch: "https://github.com/bob/tool"},
				{Name: "origin", Fetch: "git@github.com:alice/tool.git"},
			},
			want: &Slug{Owner: "alice", Repo: "tool"},
		},
		{
			name: "upstream before others",
			remotes: []checkout.Remote{
				{Name: "fork", Fetch: "git@github.com:carol/tool.git"},
				{Name: "upstream", Fetch: "https://github.com/bob/tool"},
			},
			want: &Slug{Owner: "bob", Repo: "tool"},
		},
		{
			name: "origin without hosting shape",
			remotes: []checkout.Remote{
				{Name: "origin", Fetch: "/srv/mirror/tool"},
				{Name: "backup", Fetch: "ssh://git@git.example.com:2222/dave/tool.git"},
			},
			want: &Slug{Owner: "dave", Repo: "tool"},
		},
		{
			name:    "nothing usable",
			remotes: []checkout.Remote{{Name: "origin", Fetch: "/srv/mirror/tool"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromLocal("tool", "/src")
			slug, err := r.RemoteOriginSlug(context.Background(), &fakeGit{remotes: tt.remotes})
			require.NoError(t, err)
			assert.Equal(t, tt.want, slug)
		})
	}
}

func TestParseSlug(t *testing.T) {
	tests := []struct {
		url  string
		want *Slug
	}{
		{"git@github.com:alice/tool.git", &Slug{"alice", "tool"}},
		{"git@github.com:alice/tool", &Slug{"alice", "tool"}},
		{"https://github.com/alice/tool.git", &Slug{"alice", "tool"}},
		{"https://token@github.com/alice/my.tool/", &Slug{"alice", "my.tool"}},
		{"ssh://git@github.com/alice/tool.git", &Slug{"alice", "tool"}},
		{"https://gitlab.com/group/sub/tool", nil},
		{"ssh://git@git.example.com:2222/alice/tool.git", &Slug{"alice", "tool"}},
		{"git://github.com/alice/tool", &Slug{"alice", "tool"}},
		{"/srv/tool", nil},
		{"file:///srv/alice/tool", nil},
		{"git@github.com:tool.git", nil},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSlug(tt.url))
		})
	}
}

func TestUpstreamComparisonRange(t *testing.T) {
	meta := toolMetadata()
	meta.Fork = true
	meta.Parent = &repository.Parent{Owner: "upstream-org", Name: "tool", DefaultBranch: "develop"}

	r := FromRemote(meta)
	fork, err := r.IsFork()
	require.NoError(t, err)
	assert.True(t, fork)

	compare, err := r.UpstreamComparisonRange()
	require.NoError(t, err)
	assert.Equal(t, "upstream-org:develop...alice:main", compare)

	_, err = FromRemote(toolMetadata()).UpstreamComparisonRange()
	assert.Error(t, err)
}

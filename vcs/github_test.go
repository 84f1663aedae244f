package vcs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repos-cli/config"
)

func newGitHubTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login": "alice"}`)
	})
	mux.HandleFunc("/api/v3/repos/alice/tool", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"name": "tool",
			"full_name": "alice/tool",
			"owner": {"login": "alice"},
			"fork": true,
			"default_branch": "main",
			"clone_url": "https://github.com/alice/tool.git",
			"ssh_url": "git@github.com:alice/tool.git",
			"html_url": "https://github.com/alice/tool",
			"parent": {"name": "tool", "owner": {"login": "upstream"}, "default_branch": "develop"}
		}`)
	})
	mux.HandleFunc("/api/v3/repos/alice/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	mux.HandleFunc("/api/v3/repos/alice/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "boom"}`)
	})
	mux.HandleFunc("/api/v3/repos/alice/tool/compare/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ahead_by": 1, "behind_by": 3}`)
	})

	var server *httptest.Server
	mux.HandleFunc("/api/v3/user/repos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"name": "third", "owner": {"login": "alice"}}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v3/user/repos?page=2&per_page=100>; rel="next"`, server.URL))
		fmt.Fprint(w, `[{"name": "first", "owner": {"login": "alice"}}, {"name": "second", "owner": {"login": "org"}, "archived": true}]`)
	})
	mux.HandleFunc("/api/v3/users/bob/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name": "bobs", "owner": {"login": "bob"}}]`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestGitHub(t *testing.T, token string) *GitHub {
	t.Helper()
	server := newGitHubTestServer(t)

	client, err := NewGitHubClient(context.Background(), config.Host{
		Name:    "github",
		Type:    "github",
		BaseUrl: server.URL,
		Token:   token,
	})
	require.NoError(t, err)
	return client
}

func TestGitHubAuthenticatedUser(t *testing.T) {
	client := newTestGitHub(t, "t0ken")

	user, err := client.GetAuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user)

	_, err = newTestGitHub(t, "").GetAuthenticatedUser(context.Background())
	assert.Error(t, err)
}

func TestGitHubFindRepository(t *testing.T) {
	client := newTestGitHub(t, "t0ken")

	meta, err := client.FindRepository(context.Background(), "tool", "alice")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "alice", meta.Owner)
	assert.Equal(t, "tool", meta.Name)
	assert.True(t, meta.Fork)
	assert.Equal(t, "git@github.com:alice/tool.git", meta.SSHURL)
	require.NotNil(t, meta.Parent)
	assert.Equal(t, "upstream", meta.Parent.Owner)
	assert.Equal(t, "develop", meta.Parent.DefaultBranch)

	// an empty owner resolves to the authenticated user
	meta, err = client.FindRepository(context.Background(), "tool", "")
	require.NoError(t, err)
	assert.Equal(t, "alice/tool", meta.FullName())
}

func TestGitHubFindRepositoryNotFound(t *testing.T) {
	client := newTestGitHub(t, "t0ken")

	meta, err := client.FindRepository(context.Background(), "missing", "alice")
	assert.NoError(t, err)
	assert.Nil(t, meta)

	_, err = client.FindRepository(context.Background(), "broken", "alice")
	assert.Error(t, err)
}

func TestGitHubListRepositoriesPaginates(t *testing.T) {
	client := newTestGitHub(t, "t0ken")

	repos, err := ListRepositories(context.Background(), client, "")
	require.NoError(t, err)

	names := []string{}
	for _, repo := range repos {
		names = append(names, repo.FullName())
	}
	assert.Equal(t, []string{"alice/first", "org/second", "alice/third"}, names)
	assert.True(t, repos[1].Archived)
}

func TestGitHubListRepositoriesForUser(t *testing.T) {
	client := newTestGitHub(t, "")

	_, err := ListRepositories(context.Background(), client, "")
	assert.ErrorIs(t, err, ErrNoUser)

	repos, err := ListRepositories(context.Background(), client, "bob")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "bob/bobs", repos[0].FullName())
}

func TestGitHubCountBehind(t *testing.T) {
	client := newTestGitHub(t, "t0ken")

	meta, err := client.FindRepository(context.Background(), "tool", "alice")
	require.NoError(t, err)

	behind, err := client.CountBehind(context.Background(), meta, "upstream:develop...alice:main")
	require.NoError(t, err)
	assert.Equal(t, 3, behind)

	_, err = client.CountBehind(context.Background(), meta, "nonsense")
	assert.Error(t, err)
}

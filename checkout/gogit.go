package checkout

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/rs/zerolog/log"
)

// GoGit runs git operations in process with go-git.
type GoGit struct{}

func goGitAuth(url string) (transport.AuthMethod, error) {
	endpoint, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, err
	}

	if endpoint.Protocol != "ssh" {
		return nil, nil
	}

	user := endpoint.User
	if user == "" {
		user = "git"
	}

	return gitssh.NewSSHAgentAuth(user)
}

func (*GoGit) Clone(ctx context.Context, url, destFolder string) error {
	auth, err := goGitAuth(url)
	if err != nil {
		return err
	}

	log.Debug().Str("clone_url", url).Str("path", destFolder).Msg("Cloning with go-git")

	_, err = git.PlainCloneContext(ctx, destFolder, false, &git.CloneOptions{
		URL:  url,
		Auth: auth,
	})
	return err
}

func (*GoGit) ListRemotes(ctx context.Context, folder string) ([]Remote, error) {
	repo, err := git.PlainOpen(folder)
	if err != nil {
		return nil, err
	}

	gitRemotes, err := repo.Remotes()
	if err != nil {
		return nil, err
	}

	remotes := []Remote{}
	for _, gitRemote := range gitRemotes {
		config := gitRemote.Config()
		if len(config.URLs) == 0 {
			continue
		}

		remotes = append(remotes, Remote{
			Name:  config.Name,
			Fetch: config.URLs[0],
			Push:  config.URLs[len(config.URLs)-1],
		})
	}

	// go-git keeps remotes in a map
	sort.Slice(remotes, func(i, j int) bool {
		return remotes[i].Name < remotes[j].Name
	})

	return remotes, nil
}

func (*GoGit) Status(ctx context.Context, folder string) (*Status, error) {
	repo, err := git.PlainOpen(folder)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}

	fileStatuses, err := worktree.Status()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(fileStatuses))
	for path := range fileStatuses {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	status := &Status{}
	for _, path := range paths {
		file := fileStatuses[path]
		switch {
		case file.Staging == git.UpdatedButUnmerged || file.Worktree == git.UpdatedButUnmerged:
			status.Conflicted = append(status.Conflicted, path)
		case file.Worktree == git.Untracked:
			status.NotAdded = append(status.NotAdded, path)
		case file.Staging == git.Added:
			status.Created = append(status.Created, path)
		case file.Staging == git.Renamed || file.Worktree == git.Renamed:
			status.Renamed = append(status.Renamed, path)
		case file.Staging == git.Deleted || file.Worktree == git.Deleted:
			status.Deleted = append(status.Deleted, path)
		case file.Staging == git.Modified || file.Worktree == git.Modified:
			status.Modified = append(status.Modified, path)
		}
	}

	status.Ahead, status.Behind, err = goGitAheadBehind(repo)
	if err != nil {
		log.Debug().Err(err).Str("path", folder).Msg("Failed computing ahead/behind")
	}

	return status, nil
}

func goGitAheadBehind(repo *git.Repository) (int, int, error) {
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	if !head.Name().IsBranch() {
		return 0, 0, nil
	}

	config, err := repo.Config()
	if err != nil {
		return 0, 0, err
	}

	branch, found := config.Branches[head.Name().Short()]
	if !found || branch.Remote == "" || branch.Merge == "" {
		return 0, 0, nil
	}

	upstreamName := plumbing.NewRemoteReferenceName(branch.Remote, strings.TrimPrefix(branch.Merge.String(), "refs/heads/"))
	upstream, err := repo.Reference(upstreamName, true)
	if err != nil {
		return 0, 0, nil
	}

	ahead, err := countExclusive(repo, head.Hash(), upstream.Hash())
	if err != nil {
		return 0, 0, err
	}

	behind, err := countExclusive(repo, upstream.Hash(), head.Hash())
	if err != nil {
		return 0, 0, err
	}

	return ahead, behind, nil
}

// countExclusive counts the commits reachable from "from" but not from "exclude".
func countExclusive(repo *git.Repository, from, exclude plumbing.Hash) (int, error) {
	excluded := map[plumbing.Hash]struct{}{}

	excludeIter, err := repo.Log(&git.LogOptions{From: exclude})
	if err != nil {
		return 0, err
	}
	err = excludeIter.ForEach(func(commit *object.Commit) error {
		excluded[commit.Hash] = struct{}{}
		return nil
	})
	if err != nil {
		return 0, err
	}

	fromIter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return 0, err
	}

	count := 0
	err = fromIter.ForEach(func(commit *object.Commit) error {
		if _, found := excluded[commit.Hash]; !found {
			count++
		}
		return nil
	})

	return count, err
}

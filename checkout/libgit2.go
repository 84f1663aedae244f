package checkout

import (
	"context"

	git "github.com/libgit2/git2go/v34"
	"github.com/rs/zerolog/log"
)

// Libgit2 runs git operations through libgit2.
type Libgit2 struct{}

func remoteCallbacks(url string) git.RemoteCallbacks {
	logger := log.With().Str("clone_url", url).Logger()

	return git.RemoteCallbacks{
		CredentialsCallback: func(url, username string, allowed git.CredentialType) (*git.Credential, error) {
			if allowed&git.CredentialTypeSSHKey != 0 {
				return git.NewCredentialSSHKeyFromAgent(username)
			}
			return git.NewCredentialDefault()
		},
		TransferProgressCallback: func(stats git.TransferProgress) error {
			logger.Debug().Msgf("Progress: %d/%d", stats.ReceivedObjects, stats.TotalObjects)
			return nil
		},
	}
}

func (*Libgit2) Clone(ctx context.Context, url, destFolder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cloned, err := git.Clone(url, destFolder, &git.CloneOptions{
		FetchOptions: git.FetchOptions{
			RemoteCallbacks: remoteCallbacks(url),
		},
	})
	if err != nil {
		return err
	}
	cloned.Free()

	return nil
}

func (*Libgit2) ListRemotes(ctx context.Context, folder string) ([]Remote, error) {
	repo, err := git.OpenRepository(folder)
	if err != nil {
		return nil, err
	}
	defer repo.Free()

	names, err := repo.Remotes.List()
	if err != nil {
		return nil, err
	}

	remotes := []Remote{}
	for _, name := range names {
		remote, err := repo.Remotes.Lookup(name)
		if err != nil {
			return nil, err
		}

		push := remote.PushUrl()
		if push == "" {
			push = remote.Url()
		}

		remotes = append(remotes, Remote{Name: name, Fetch: remote.Url(), Push: push})
		remote.Free()
	}

	return remotes, nil
}

func (*Libgit2) Status(ctx context.Context, folder string) (*Status, error) {
	repo, err := git.OpenRepository(folder)
	if err != nil {
		return nil, err
	}
	defer repo.Free()

	list, err := repo.StatusList(&git.StatusOptions{
		Show:  git.StatusShowIndexAndWorkdir,
		Flags: git.StatusOptIncludeUntracked | git.StatusOptRenamesHeadToIndex,
	})
	if err != nil {
		return nil, err
	}
	defer list.Free()

	count, err := list.EntryCount()
	if err != nil {
		return nil, err
	}

	status := &Status{}
	for i := 0; i < count; i++ {
		entry, err := list.ByIndex(i)
		if err != nil {
			return nil, err
		}

		path := entry.IndexToWorkdir.NewFile.Path
		if path == "" {
			path = entry.HeadToIndex.NewFile.Path
		}

		flags := entry.Status
		switch {
		case flags&git.StatusConflicted != 0:
			status.Conflicted = append(status.Conflicted, path)
		case flags&git.StatusWtNew != 0:
			status.NotAdded = append(status.NotAdded, path)
		case flags&git.StatusIndexNew != 0:
			status.Created = append(status.Created, path)
		case flags&(git.StatusIndexRenamed|git.StatusWtRenamed) != 0:
			status.Renamed = append(status.Renamed, path)
		case flags&(git.StatusIndexDeleted|git.StatusWtDeleted) != 0:
			status.Deleted = append(status.Deleted, path)
		case flags&(git.StatusIndexModified|git.StatusWtModified|git.StatusIndexTypeChange|git.StatusWtTypeChange) != 0:
			status.Modified = append(status.Modified, path)
		}
	}

	status.Ahead, status.Behind = libgit2AheadBehind(repo)

	return status, nil
}

// libgit2AheadBehind compares HEAD with its upstream. Detached heads, unborn
// branches and branches without upstream count as level.
func libgit2AheadBehind(repo *git.Repository) (int, int) {
	head, err := repo.Head()
	if err != nil {
		return 0, 0
	}
	defer head.Free()

	if !head.IsBranch() {
		return 0, 0
	}

	upstream, err := head.Branch().Upstream()
	if err != nil {
		return 0, 0
	}
	defer upstream.Free()

	ahead, behind, err := repo.AheadBehind(head.Target(), upstream.Target())
	if err != nil {
		log.Debug().Err(err).Msg("Failed computing ahead/behind")
		return 0, 0
	}

	return ahead, behind
}

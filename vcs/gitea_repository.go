package vcs

import (
	"code.gitea.io/sdk/gitea"

	"repos-cli/vcs/repository"
)

func giteaOwner(repo *gitea.Repository) string {
	if repo.Owner == nil {
		return ""
	}
	return repo.Owner.UserName
}

func giteaMetadata(repo *gitea.Repository) *repository.Metadata {
	meta := &repository.Metadata{
		Owner:         giteaOwner(repo),
		Name:          repo.Name,
		Description:   repo.Description,
		Fork:          repo.Fork,
		Archived:      repo.Archived,
		Private:       repo.Private,
		DefaultBranch: repo.DefaultBranch,
		CloneURL:      repo.CloneURL,
		SSHURL:        repo.SSHURL,
		HTMLURL:       repo.HTMLURL,
		CreatedAt:     repo.Created,
		UpdatedAt:     repo.Updated,
		// the gitea API exposes no push timestamp, PushedAt stays zero
	}

	if repo.Parent != nil {
		meta.Parent = &repository.Parent{
			Owner:         giteaOwner(repo.Parent),
			Name:          repo.Parent.Name,
			DefaultBranch: repo.Parent.DefaultBranch,
		}
	}

	return meta
}

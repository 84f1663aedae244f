package vcs

import (
	"github.com/google/go-github/v50/github"

	"repos-cli/vcs/repository"
)

func githubMetadata(repo *github.Repository) *repository.Metadata {
	meta := &repository.Metadata{
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		Description:   repo.GetDescription(),
		Fork:          repo.GetFork(),
		Archived:      repo.GetArchived(),
		Private:       repo.GetPrivate(),
		DefaultBranch: repo.GetDefaultBranch(),
		CloneURL:      repo.GetCloneURL(),
		SSHURL:        repo.GetSSHURL(),
		HTMLURL:       repo.GetHTMLURL(),
		CreatedAt:     repo.GetCreatedAt().Time,
		UpdatedAt:     repo.GetUpdatedAt().Time,
		PushedAt:      repo.GetPushedAt().Time,
	}

	// Listings omit the parent, only single lookups carry it
	if parent := repo.GetParent(); parent != nil {
		meta.Parent = &repository.Parent{
			Owner:         parent.GetOwner().GetLogin(),
			Name:          parent.GetName(),
			DefaultBranch: parent.GetDefaultBranch(),
		}
	}

	return meta
}

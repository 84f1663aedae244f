package vcs

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v50/github"
	"github.com/rs/zerolog/log"

	"repos-cli/config"
	"repos-cli/vcs/repository"
)

type GitHub struct {
	config *config.Host
	client *github.Client
}

func NewGitHubClient(ctx context.Context, config config.Host) (*GitHub, error) {
	logger := log.With().Str("host", config.Name).Logger()

	logger.Debug().Msg("Initializing client")

	var client *github.Client

	if config.Token != "" {
		client = github.NewTokenClient(ctx, config.Token)
	} else {
		logger.Debug().Msg("No token configured, using anonymous access")
		client = github.NewClient(nil)
	}

	if config.BaseUrl != "" && !strings.HasPrefix(config.BaseUrl, "https://github.com") {
		base := strings.TrimSuffix(config.BaseUrl, "/")

		baseURL, err := url.Parse(base + "/api/v3/")
		if err != nil {
			return nil, err
		}
		uploadURL, err := url.Parse(base + "/api/uploads/")
		if err != nil {
			return nil, err
		}

		client.BaseURL = baseURL
		client.UploadURL = uploadURL
	}

	return &GitHub{config: &config, client: client}, nil
}

func (this *GitHub) GetConfig() *config.Host {
	return this.config
}

func (this *GitHub) HasToken() bool {
	return this.config.Token != ""
}

func (this *GitHub) GetAuthenticatedUser(ctx context.Context) (string, error) {
	if !this.HasToken() {
		return "", errors.New("no token configured for " + this.config.Name)
	}

	user, _, err := this.client.Users.Get(ctx, "")
	if err != nil {
		return "", err
	}

	username := user.GetLogin()
	log.Info().Str("host", this.config.Name).Msgf("Logged in as %s", username)

	return username, nil
}

func (this *GitHub) FindRepository(ctx context.Context, name, owner string) (*repository.Metadata, error) {
	if owner == "" {
		var err error
		owner, err = this.GetAuthenticatedUser(ctx)
		if err != nil {
			return nil, err
		}
	}

	repo, resp, err := this.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			log.Debug().Str("host", this.config.Name).Msgf("No repository %s/%s", owner, name)
			return nil, nil
		}
		return nil, err
	}

	return githubMetadata(repo), nil
}

func (this *GitHub) ListRepositoriesForUser(ctx context.Context, user string) ([]*repository.Metadata, error) {
	return this.listRepositories(ctx, user)
}

func (this *GitHub) ListRepositoriesForAuthenticatedUser(ctx context.Context) ([]*repository.Metadata, error) {
	return this.listRepositories(ctx, "")
}

// listRepositories lists for user, or for the authenticated user when empty.
func (this *GitHub) listRepositories(ctx context.Context, user string) ([]*repository.Metadata, error) {
	logger := log.With().Str("host", this.config.Name).Logger()

	allRepos := []*repository.Metadata{}
	options := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	for {
		repos, resp, err := this.client.Repositories.List(ctx, user, options)
		if err != nil {
			return nil, err
		}

		for _, repo := range repos {
			logger.Debug().Msgf("Found repository: %s (%s)", repo.GetFullName(), repo.GetDescription())
			allRepos = append(allRepos, githubMetadata(repo))
		}

		if resp.NextPage == 0 {
			break
		}

		options.ListOptions.Page = resp.NextPage
	}

	return allRepos, nil
}

func (this *GitHub) CountBehind(ctx context.Context, meta *repository.Metadata, compareRange string) (int, error) {
	base, head, found := strings.Cut(compareRange, "...")
	if !found {
		return 0, errors.New("invalid compare range: " + compareRange)
	}

	comparison, _, err := this.client.Repositories.CompareCommits(ctx, meta.Owner, meta.Name, base, head, nil)
	if err != nil {
		return 0, err
	}

	return comparison.GetBehindBy(), nil
}

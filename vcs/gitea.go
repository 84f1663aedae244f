package vcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"code.gitea.io/sdk/gitea"
	"github.com/rs/zerolog/log"

	"repos-cli/config"
	"repos-cli/vcs/repository"
)

type Gitea struct {
	config         *config.Host
	client         *gitea.Client
	mutex          *sync.Mutex
	initialContext context.Context
}

func NewGiteaClient(ctx context.Context, config config.Host) (*Gitea, error) {
	logger := log.With().Str("host", config.Name).Logger()

	logger.Debug().Msg("Initializing client")

	options := []gitea.ClientOption{gitea.SetContext(ctx)}
	if config.Token != "" {
		options = append(options, gitea.SetToken(config.Token))
	}

	client, err := gitea.NewClient(config.BaseUrl, options...)
	if err != nil {
		return nil, err
	}

	return &Gitea{config: &config, client: client, mutex: &sync.Mutex{}, initialContext: ctx}, nil
}

func (giteaClient *Gitea) withContext(ctx context.Context, cb func(client *gitea.Client) error) error {
	// We need the mutex to protect against setting the default context for the current request
	giteaClient.mutex.Lock()
	defer giteaClient.mutex.Unlock()

	giteaClient.client.SetContext(ctx)
	err := cb(giteaClient.client)
	giteaClient.client.SetContext(giteaClient.initialContext)

	return err
}

func isNotFound(resp *gitea.Response) bool {
	return resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound
}

func (giteaClient *Gitea) GetConfig() *config.Host {
	return giteaClient.config
}

func (giteaClient *Gitea) HasToken() bool {
	return giteaClient.config.Token != ""
}

func (giteaClient *Gitea) GetAuthenticatedUser(ctx context.Context) (string, error) {
	if !giteaClient.HasToken() {
		return "", errors.New("no token configured for " + giteaClient.config.Name)
	}

	var user *gitea.User
	err := giteaClient.withContext(ctx, func(client *gitea.Client) error {
		var err error
		user, _, err = client.GetMyUserInfo()
		return err
	})
	if err != nil {
		return "", err
	}

	log.Info().Str("host", giteaClient.config.Name).Msgf("Logged in as %s", user.UserName)

	return user.UserName, nil
}

func (giteaClient *Gitea) FindRepository(ctx context.Context, name, owner string) (*repository.Metadata, error) {
	if owner == "" {
		var err error
		owner, err = giteaClient.GetAuthenticatedUser(ctx)
		if err != nil {
			return nil, err
		}
	}

	var repo *gitea.Repository
	var resp *gitea.Response
	err := giteaClient.withContext(ctx, func(client *gitea.Client) error {
		var err error
		repo, resp, err = client.GetRepo(owner, name)
		return err
	})
	if err != nil {
		if isNotFound(resp) {
			return nil, nil
		}
		return nil, err
	}

	return giteaMetadata(repo), nil
}

func (giteaClient *Gitea) ListRepositoriesForUser(ctx context.Context, user string) ([]*repository.Metadata, error) {
	return giteaClient.paginate(ctx, func(client *gitea.Client, options gitea.ListReposOptions) ([]*gitea.Repository, *gitea.Response, error) {
		return client.ListUserRepos(user, options)
	})
}

func (giteaClient *Gitea) ListRepositoriesForAuthenticatedUser(ctx context.Context) ([]*repository.Metadata, error) {
	return giteaClient.paginate(ctx, func(client *gitea.Client, options gitea.ListReposOptions) ([]*gitea.Repository, *gitea.Response, error) {
		return client.ListMyRepos(options)
	})
}

type listPage func(client *gitea.Client, options gitea.ListReposOptions) ([]*gitea.Repository, *gitea.Response, error)

func (giteaClient *Gitea) paginate(ctx context.Context, list listPage) ([]*repository.Metadata, error) {
	logger := log.With().Str("host", giteaClient.config.Name).Logger()

	allRepos := []*repository.Metadata{}
	options := gitea.ListReposOptions{
		ListOptions: gitea.ListOptions{
			Page:     1,
			PageSize: 50,
		},
	}

	for {
		var repos []*gitea.Repository
		var resp *gitea.Response

		err := giteaClient.withContext(ctx, func(client *gitea.Client) error {
			var err error
			repos, resp, err = list(client, options)
			return err
		})

		if err != nil {
			return nil, err
		}

		for _, repo := range repos {
			logger.Debug().Msgf("Found repository: %s (%s)", repo.FullName, repo.Description)
			allRepos = append(allRepos, giteaMetadata(repo))
		}

		if len(repos) == 0 {
			break
		}

		// The server may clamp the page size, so trust the total when it is sent
		if resp != nil && resp.Response != nil && resp.Header.Get("X-Total-Count") != "" {
			totalCount, err := strconv.Atoi(resp.Header.Get("X-Total-Count"))
			if err != nil {
				return nil, fmt.Errorf("invalid X-Total-Count: %w", err)
			}
			if totalCount <= len(allRepos) {
				break
			}
		} else if len(repos) < options.ListOptions.PageSize {
			break
		}

		options.ListOptions.Page += 1
	}

	return allRepos, nil
}

func (giteaClient *Gitea) CountBehind(ctx context.Context, meta *repository.Metadata, compareRange string) (int, error) {
	return 0, ErrUnsupported
}

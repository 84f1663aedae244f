package vcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"repos-cli/config"
	"repos-cli/vcs/repository"
)

var ErrUnsupported = errors.New("not supported by this host")

// ErrNoUser is returned when a listing needs a user and neither a token nor
// a configured user name is available.
var ErrNoUser = errors.New("no user specified, either set $GITHUB_USER, $GITHUB_TOKEN or --github-user")

type Vcs interface {
	GetConfig() *config.Host
	HasToken() bool
	// GetAuthenticatedUser returns the login the token belongs to.
	GetAuthenticatedUser(ctx context.Context) (string, error)
	// FindRepository looks a repository up by name. An empty owner means the
	// authenticated user. A missing repository yields nil without error.
	FindRepository(ctx context.Context, name, owner string) (*repository.Metadata, error)
	ListRepositoriesForUser(ctx context.Context, user string) ([]*repository.Metadata, error)
	ListRepositoriesForAuthenticatedUser(ctx context.Context) ([]*repository.Metadata, error)
	// CountBehind returns how many commits a fork trails its parent, using a
	// compare range as built by repo.UpstreamComparisonRange.
	CountBehind(ctx context.Context, meta *repository.Metadata, compareRange string) (int, error)
}

func NewClient(ctx context.Context, host config.Host) (Vcs, error) {
	switch host.Type {
	case "", "github":
		return NewGitHubClient(ctx, host)
	case "gitea":
		return NewGiteaClient(ctx, host)
	}
	return nil, fmt.Errorf("unsupported host type: %s", host.Type)
}

// ListRepositories prefers the authenticated listing, which includes private
// repositories, and falls back to the public listing of user.
func ListRepositories(ctx context.Context, client Vcs, user string) ([]*repository.Metadata, error) {
	if client.HasToken() {
		return client.ListRepositoriesForAuthenticatedUser(ctx)
	}
	if user == "" {
		return nil, ErrNoUser
	}
	return client.ListRepositoriesForUser(ctx, user)
}

func GetLogger(vcs Vcs) zerolog.Logger {
	return log.With().Str("host", vcs.GetConfig().Name).Logger()
}

// Package sync checks out every repository of the account into the folder it
// is expected in.
package sync

import (
	"context"
	"fmt"
	"path/filepath"
	gosync "sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"repos-cli/repo"
	"repos-cli/resolve"
	"repos-cli/vcs"
	"repos-cli/vcs/repository"
)

const defaultJobs = 4

type Options struct {
	IncludeArchived bool
	// IncludeAlts also lists the repositories of the alternate accounts.
	IncludeAlts bool
	// Jobs bounds concurrent clones.
	Jobs int
}

type syncContext struct {
	resolver *resolve.Context
	client   vcs.Vcs
	options  Options
}

func (this *syncContext) listRepositories(ctx context.Context) ([]*repository.Metadata, error) {
	owner, err := this.resolver.EffectiveOwner(ctx)
	if err != nil {
		return nil, err
	}

	repos, err := vcs.ListRepositories(ctx, this.client, owner)
	if err != nil {
		return nil, err
	}

	if this.options.IncludeAlts {
		alts, err := this.resolver.Alt(ctx)
		if err != nil {
			return nil, err
		}

		for _, alt := range alts {
			altRepos, err := this.client.ListRepositoriesForUser(ctx, alt)
			if err != nil {
				return nil, fmt.Errorf("listing repositories of %s: %w", alt, err)
			}
			repos = append(repos, altRepos...)
		}
	}

	seen := map[string]struct{}{}
	unique := make([]*repository.Metadata, 0, len(repos))
	for _, meta := range repos {
		if _, found := seen[meta.FullName()]; found {
			continue
		}
		seen[meta.FullName()] = struct{}{}
		unique = append(unique, meta)
	}

	return unique, nil
}

func (this *syncContext) expectedEntries(ctx context.Context, repos []*repository.Metadata) ([]Entry, error) {
	entries := make([]Entry, 0, len(repos))
	for _, meta := range repos {
		if meta.Archived && !this.options.IncludeArchived {
			log.Debug().Str("repository", meta.FullName()).Msg("Skipping archived repository")
			continue
		}

		r := repo.FromRemote(meta)
		folder, err := this.resolver.ExpectedFolder(ctx, r, "")
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Repo: r, Folder: folder})
	}
	return entries, nil
}

// BuildPlan compares the account's repositories with the checkouts on disk.
func BuildPlan(ctx context.Context, resolver *resolve.Context, options Options) (*Plan, error) {
	client, err := resolver.Client(ctx)
	if err != nil {
		return nil, err
	}

	this := &syncContext{resolver: resolver, client: client, options: options}

	repos, err := this.listRepositories(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("%d remote repositories found", len(repos))

	entries, err := this.expectedEntries(ctx, repos)
	if err != nil {
		return nil, err
	}

	f, err := resolver.Finder(ctx)
	if err != nil {
		return nil, err
	}
	folders, err := f.AllFolders(ctx)
	if err != nil {
		return nil, err
	}

	plan := Compare(entries, folders)
	return &plan, nil
}

// SyncRepositories clones every missing repository. Failures are logged per
// repository and reported together once all clones have run.
func SyncRepositories(ctx context.Context, resolver *resolve.Context, options Options) (*Plan, error) {
	plan, err := BuildPlan(ctx, resolver, options)
	if err != nil {
		return nil, err
	}

	for _, folder := range plan.Untracked {
		log.Warn().Str("path", folder).Msg("Local repository has no remote counterpart")
	}

	if len(plan.Missing) == 0 {
		log.Info().Int("present", len(plan.Present)).Msg("All repositories are checked out")
		return plan, nil
	}

	jobs := options.Jobs
	if jobs <= 0 {
		jobs = defaultJobs
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var mutex gosync.Mutex
	errCount := 0
	cloneOptions := repo.CloneOptions{Https: resolver.Config().UseHttps()}

	for _, entry := range plan.Missing {
		g.Go(func() error {
			logger := log.With().Str("repository", entry.Repo.String()).Logger()

			err := entry.Repo.EnsureLocal(gctx, resolver.Git(), filepath.Dir(entry.Folder), cloneOptions)
			if err != nil {
				logger.Error().Err(err).Send()
				mutex.Lock()
				errCount += 1
				mutex.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if errCount > 0 {
		return plan, fmt.Errorf("%d of %d repositories failed to sync", errCount, len(plan.Missing))
	}

	return plan, nil
}

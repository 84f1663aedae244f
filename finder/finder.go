// Package finder locates repositories on disk from a list of sources.
package finder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"

	"repos-cli/constants"
	"repos-cli/repo"
	"repos-cli/source"
)

var ErrNoSources = errors.New("no search sources specified")

// Match pairs a repository with the source that produced it.
type Match struct {
	Repo   *repo.Repo
	Source source.Source
}

func (match *Match) String() string {
	return match.Repo.String()
}

type Finder struct {
	baseSources []source.Source
	cwd         string
}

// New returns a finder without sources. An empty cwd means the process
// working directory.
func New(cwd string) *Finder {
	if cwd == "" {
		cwd, _ = os.Getwd()
	}
	return &Finder{cwd: cwd}
}

func FromSources(cwd string, sources ...source.Source) *Finder {
	finder := New(cwd)
	for _, s := range sources {
		finder.AddSource(s)
	}
	return finder
}

func (finder *Finder) AddSource(s source.Source) {
	finder.baseSources = append(finder.baseSources, source.Normalize(s))
}

func (finder *Finder) AddParentSource(folder string) {
	finder.AddSource(source.Source{Input: folder, Kind: source.Parent})
}

func (finder *Finder) AddGlobSource(glob string) {
	finder.AddSource(source.Source{Input: glob, Kind: source.Glob})
}

func (finder *Finder) AddDeepSource(folder string) {
	finder.AddSource(source.Source{Input: folder, Kind: source.Deep})
}

func (finder *Finder) Sources() []source.Source {
	return finder.baseSources
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// absolute resolves a relative source input against the finder's working
// directory.
func (finder *Finder) absolute(input string) string {
	if filepath.IsAbs(input) {
		return input
	}
	return filepath.Join(finder.cwd, input)
}

// FindInParent returns the immediate subdirectories of folder that hold a
// .git directory. A missing folder yields nothing.
func (finder *Finder) FindInParent(folder string) ([]*repo.Repo, error) {
	folder = finder.absolute(folder)
	entries, err := os.ReadDir(folder)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("source", folder).Msg("Parent folder does not exist")
			return nil, nil
		}
		return nil, err
	}

	repos := []*repo.Repo{}
	for _, entry := range entries {
		candidate := filepath.Join(folder, entry.Name())
		if !isDir(candidate) || !isDir(filepath.Join(candidate, constants.GIT_FOLDER)) {
			continue
		}

		r, err := repo.FromFolder(candidate)
		if err != nil {
			return nil, err
		}
		repos = append(repos, r)
	}

	return repos, nil
}

// FindInGlob matches pattern + "/.git" and keeps the directories. Relative
// patterns match below the working directory, whose name is taken literally.
func (finder *Finder) FindInGlob(pattern string) ([]*repo.Repo, error) {
	gitPattern := strings.TrimSuffix(filepath.ToSlash(pattern), "/") + "/" + constants.GIT_FOLDER

	var matches []string
	var err error
	if filepath.IsAbs(pattern) {
		matches, err = doublestar.FilepathGlob(gitPattern)
	} else {
		matches, err = finder.globBelowCwd(gitPattern)
	}
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	repos := []*repo.Repo{}
	for _, match := range matches {
		if !isDir(match) {
			continue
		}

		r, err := repo.FromFolder(match)
		if err != nil {
			return nil, err
		}
		repos = append(repos, r)
	}

	return repos, nil
}

func (finder *Finder) globBelowCwd(pattern string) ([]string, error) {
	root := finder.cwd
	pattern = path.Clean(pattern)
	for pattern == ".." || strings.HasPrefix(pattern, "../") {
		root = filepath.Dir(root)
		pattern = strings.TrimPrefix(strings.TrimPrefix(pattern, ".."), "/")
	}

	relative, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, err
	}

	matches := make([]string, 0, len(relative))
	for _, match := range relative {
		matches = append(matches, filepath.Join(root, filepath.FromSlash(match)))
	}
	return matches, nil
}

func isGitFolder(folder string) bool {
	info, err := os.Stat(filepath.Join(folder, constants.GIT_FOLDER, "HEAD"))
	return err == nil && !info.IsDir()
}

// FindUpward walks from start towards the filesystem root and returns the
// nearest folder holding .git/HEAD, or nil.
func (finder *Finder) FindUpward(start string) (*repo.Repo, error) {
	if start == "" {
		start = finder.cwd
	}

	current, err := filepath.Abs(finder.absolute(start))
	if err != nil {
		return nil, err
	}

	for {
		if isGitFolder(current) {
			return repo.FromFolder(current)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, nil
		}
		current = parent
	}
}

func (finder *Finder) ReposFromSource(s source.Source) ([]*repo.Repo, error) {
	switch s.Kind {
	case source.Deep:
		r, err := finder.FindUpward(s.Input)
		if err != nil || r == nil {
			return nil, err
		}
		return []*repo.Repo{r}, nil
	case source.Glob:
		return finder.FindInGlob(s.Input)
	case source.Parent:
		return finder.FindInParent(s.Input)
	}
	return nil, fmt.Errorf("unknown source type: %s", s.Kind)
}

// AllMatches resolves the base sources followed by extra, in order. A folder
// reached through several sources is kept once, attributed to the first.
func (finder *Finder) AllMatches(ctx context.Context, extra ...source.Source) ([]*Match, error) {
	sources := append(append([]source.Source{}, finder.baseSources...), extra...)
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	seen := map[string]struct{}{}
	matches := []*Match{}
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s = source.Normalize(s)
		repos, err := finder.ReposFromSource(s)
		if err != nil {
			return nil, fmt.Errorf("searching %s %s: %w", s.Kind, s.Input, err)
		}
		log.Debug().Str("source", s.Input).Int("repos", len(repos)).Msg("Scanned source")

		for _, r := range repos {
			folder := r.String()
			if _, found := seen[folder]; found {
				continue
			}
			seen[folder] = struct{}{}
			matches = append(matches, &Match{Repo: r, Source: s})
		}
	}

	return matches, nil
}

func (finder *Finder) AllFolders(ctx context.Context, extra ...source.Source) ([]string, error) {
	matches, err := finder.AllMatches(ctx, extra...)
	if err != nil {
		return nil, err
	}

	folders := make([]string, 0, len(matches))
	for _, match := range matches {
		folders = append(folders, match.Repo.String())
	}
	return folders, nil
}

// FindByName returns the first match whose folder name equals needle, in
// source order then enumeration order. Without a needle it resolves the
// repository enclosing the working directory.
func (finder *Finder) FindByName(ctx context.Context, needle string, extra ...source.Source) (*Match, error) {
	if needle == "" {
		cwdSource := source.Source{Input: finder.cwd, Kind: source.Deep}
		r, err := finder.FindUpward(finder.cwd)
		if err != nil || r == nil {
			return nil, err
		}
		return &Match{Repo: r, Source: cwdSource}, nil
	}

	matches, err := finder.AllMatches(ctx, extra...)
	if err != nil {
		return nil, err
	}

	suitable := []*Match{}
	for _, match := range matches {
		if match.Repo.Name() == needle {
			suitable = append(suitable, match)
		}
	}

	if len(suitable) == 0 {
		return nil, nil
	}

	if len(suitable) > 1 {
		folders := make([]string, 0, len(suitable))
		for _, match := range suitable {
			folders = append(folders, match.Repo.String())
		}
		log.Warn().Strs("folders", folders).Str("using", folders[0]).Msgf("Multiple repos found for %s", needle)
	}

	return suitable[0], nil
}

// ExpectSingle is FindByName with a missing match turned into an error that
// lists every searched source.
func (finder *Finder) ExpectSingle(ctx context.Context, needle string, extra ...source.Source) (*Match, error) {
	match, err := finder.FindByName(ctx, needle, extra...)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return match, nil
	}

	searched := []string{}
	for _, s := range append(append([]source.Source{}, finder.baseSources...), extra...) {
		searched = append(searched, s.String())
	}

	return nil, fmt.Errorf("no repo found for needle %q, searched in: %s", needle, strings.Join(searched, "; "))
}

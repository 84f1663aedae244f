package resolve

import (
	"context"
	"errors"
	"path/filepath"

	"repos-cli/repo"
)

// AccountCount is the number of local checkouts an account owns.
type AccountCount struct {
	Account string
	Main    bool
	Repos   int
}

// accountOf infers the owning account of a checkout from where it sits.
// Checkouts in the gist, fork or foreign buckets, or outside the managed
// folders, belong to no listed account.
func (c *Context) accountOf(r *repo.Repo, identity string, alts []string) (string, bool) {
	parent, err := r.ParentFolder()
	if err != nil {
		return "", false
	}

	for _, alt := range alts {
		if parent == filepath.Join(c.config.AltFolder, alt) {
			return alt, true
		}
	}

	if identity != "" && parent == c.config.ReposFolder {
		return identity, true
	}

	return "", false
}

// CountAccounts counts local checkouts per account, the main identity first
// then the alternate accounts. An unknown identity leaves only the alts.
func (c *Context) CountAccounts(ctx context.Context) ([]AccountCount, error) {
	identity, err := c.Identity(ctx)
	if err != nil && !errors.Is(err, ErrNoIdentity) {
		return nil, err
	}

	alts, err := c.Alt(ctx)
	if err != nil {
		return nil, err
	}

	counts := []AccountCount{}
	index := map[string]int{}
	if identity != "" {
		index[identity] = len(counts)
		counts = append(counts, AccountCount{Account: identity, Main: true})
	}
	for _, alt := range alts {
		if _, found := index[alt]; found {
			continue
		}
		index[alt] = len(counts)
		counts = append(counts, AccountCount{Account: alt})
	}

	f, err := c.Finder(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := f.AllMatches(ctx)
	if err != nil {
		return nil, err
	}

	for _, match := range matches {
		if account, ok := c.accountOf(match.Repo, identity, alts); ok {
			counts[index[account]].Repos++
		}
	}

	return counts, nil
}

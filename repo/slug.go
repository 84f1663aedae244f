package repo

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

type Slug struct {
	Owner string
	Repo  string
}

func (slug Slug) String() string {
	return fmt.Sprintf("%s/%s", slug.Owner, slug.Repo)
}

// ParseSlug reads owner/repo from a hosted remote URL, in scp-like
// (git@host:owner/repo.git) or URL form. Local paths and nested paths yield nil.
func ParseSlug(url string) *Slug {
	endpoint, err := transport.NewEndpoint(url)
	if err != nil || endpoint.Protocol == "file" || endpoint.Host == "" {
		return nil
	}

	path := strings.Trim(endpoint.Path, "/")
	path = strings.TrimSuffix(path, ".git")

	owner, name, found := strings.Cut(path, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil
	}

	return &Slug{Owner: owner, Repo: name}
}

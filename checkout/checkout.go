// Package checkout runs git operations against local repositories through
// libgit2 or go-git.
package checkout

import (
	"context"
	"fmt"
)

type Remote struct {
	Name  string
	Fetch string
	Push  string
}

// Status summarizes a working tree against its index and upstream branch.
type Status struct {
	Ahead      int
	Behind     int
	Conflicted []string
	Modified   []string
	Created    []string
	Deleted    []string
	Renamed    []string
	NotAdded   []string
}

func (status *Status) IsClean() bool {
	return len(status.Conflicted) == 0 &&
		len(status.Modified) == 0 &&
		len(status.Created) == 0 &&
		len(status.Deleted) == 0 &&
		len(status.Renamed) == 0 &&
		len(status.NotAdded) == 0
}

type Git interface {
	Clone(ctx context.Context, url, destFolder string) error
	ListRemotes(ctx context.Context, folder string) ([]Remote, error)
	Status(ctx context.Context, folder string) (*Status, error)
}

func New(backend string) (Git, error) {
	switch backend {
	case "", "libgit2":
		return &Libgit2{}, nil
	case "go-git":
		return &GoGit{}, nil
	}
	return nil, fmt.Errorf("unsupported git backend: %s", backend)
}

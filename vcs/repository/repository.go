package repository

import (
	"fmt"
	"time"
)

// Parent is the upstream a fork was created from.
type Parent struct {
	Owner         string
	Name          string
	DefaultBranch string
}

// Metadata is what a hosting provider knows about a repository.
type Metadata struct {
	Owner         string
	Name          string
	Description   string
	Fork          bool
	Archived      bool
	Private       bool
	Parent        *Parent
	DefaultBranch string
	CloneURL      string
	SSHURL        string
	HTMLURL       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PushedAt      time.Time
}

func (meta *Metadata) FullName() string {
	return fmt.Sprintf("%s/%s", meta.Owner, meta.Name)
}

func (meta *Metadata) GetCloneUrl(https bool) string {
	if https {
		return meta.CloneURL
	}
	return meta.SSHURL
}

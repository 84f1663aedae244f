package constants

import "context"

const FORKS_FOLDER = ".fork"
const GISTS_FOLDER = ".gist"
const FOREIGN_FOLDER = ".foreign"
const ALT_FOLDER = ".as"

const GIT_FOLDER = ".git"

type ContextKey int

const (
	DRY_RUN ContextKey = iota
)

func IsDryRun(ctx context.Context) bool {
	dryRun, _ := ctx.Value(DRY_RUN).(bool)
	return dryRun
}

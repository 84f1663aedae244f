package sync

import (
	"path/filepath"
	"sort"

	"repos-cli/repo"
)

// Entry is a remote repository paired with the folder it belongs in.
type Entry struct {
	Repo   *repo.Repo
	Folder string
}

type Plan struct {
	// Missing entries have no checkout yet.
	Missing []Entry
	Present []Entry
	// Untracked folders sit next to expected checkouts but match no remote.
	Untracked []string
}

func (plan *Plan) Len() int {
	return len(plan.Missing) + len(plan.Present)
}

// Compare splits expected entries into missing and present ones against the
// folders found on disk.
func Compare(expected []Entry, localFolders []string) Plan {
	local := map[string]struct{}{}
	for _, folder := range localFolders {
		local[folder] = struct{}{}
	}

	wanted := map[string]struct{}{}
	parents := map[string]struct{}{}
	plan := Plan{Missing: []Entry{}, Present: []Entry{}, Untracked: []string{}}
	for _, entry := range expected {
		wanted[entry.Folder] = struct{}{}
		parents[filepath.Dir(entry.Folder)] = struct{}{}

		if _, ok := local[entry.Folder]; ok {
			plan.Present = append(plan.Present, entry)
		} else {
			plan.Missing = append(plan.Missing, entry)
		}
	}

	for folder := range local {
		if _, ok := wanted[folder]; ok {
			continue
		}
		if _, ok := parents[filepath.Dir(folder)]; ok {
			plan.Untracked = append(plan.Untracked, folder)
		}
	}
	sort.Strings(plan.Untracked)

	return plan
}

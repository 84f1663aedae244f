package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCommands(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "repos", "tool", ".git"), 0o755))

	configFile := filepath.Join(root, "config.yml")
	content := "repos_folder: " + filepath.Join(root, "repos") + "\ngit_backend: go-git\ngithub_user: alice\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	sources := execute(t, "list-sources", "--config", configFile)
	lines := strings.Split(strings.TrimSpace(sources), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "parent "+filepath.Join(root, "repos"), lines[0])
	assert.Equal(t, "glob   "+filepath.Join(root, "repos", ".foreign", "*", "*"), lines[3])

	found := execute(t, "find", "tool", "--config", configFile)
	assert.Contains(t, found, "tool")
	assert.Contains(t, found, filepath.Join(root, "repos")+string(filepath.Separator))

	accounts := execute(t, "list-accounts", "--config", configFile)
	assert.Contains(t, accounts, "alice (main)")
	assert.Contains(t, accounts, "    1 repos")
}

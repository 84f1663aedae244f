package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dirStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("166"))
	leafStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
)

// colorPath highlights the last element of a folder or slug.
func colorPath(path string) string {
	i := strings.LastIndexAny(path, `/\`)
	if i < 0 {
		return path
	}
	return dirStyle.Render(path[:i+1]) + leafStyle.Render(path[i+1:])
}

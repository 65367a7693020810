package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/morozRed/fura/internal/scanner"
	"github.com/morozRed/fura/internal/unused"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// RenderUnused prints the unused files and runtime packages as tables. Paths
// are shown relative to root.
func RenderUnused(w io.Writer, res unused.Result, root string) error {
	var b strings.Builder

	if len(res.Files) == 0 {
		b.WriteString(okStyle.Render("No unused files found"))
		b.WriteString("\n")
	} else {
		rows := make([][]string, 0, len(res.Files))
		for _, f := range res.Files {
			rows = append(rows, []string{f.Name, relPath(root, f.Path), scanner.FormatFileSize(f.Size)})
		}
		b.WriteString(headingStyle.Render(fmt.Sprintf("Unused files (%d)", len(res.Files))))
		b.WriteString("\n")
		b.WriteString(table.New().
			Border(lipgloss.NormalBorder()).
			Headers("NAME", "PATH", "SIZE").
			Rows(rows...).
			Row(fmt.Sprintf("count: %d", len(res.Files)), "", "total: "+scanner.FormatFileSize(res.TotalSize())).
			Render())
		b.WriteString("\n")
	}

	if len(res.Packages) == 0 {
		b.WriteString(okStyle.Render("No unused dependencies found"))
		b.WriteString("\n")
	} else {
		rows := make([][]string, 0, len(res.Packages))
		for _, p := range res.Packages {
			rows = append(rows, []string{p.Name, p.Version})
		}
		b.WriteString(headingStyle.Render(fmt.Sprintf("Unused dependencies (%d, runtime only)", len(res.Packages))))
		b.WriteString("\n")
		b.WriteString(table.New().
			Border(lipgloss.NormalBorder()).
			Headers("NAME", "VERSION").
			Rows(rows...).
			Render())
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func relPath(root, p string) string {
	root = strings.TrimSuffix(root, "/")
	if rel, ok := strings.CutPrefix(p, root+"/"); ok {
		return rel
	}
	return p
}

package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/morozRed/fura/internal/engine"
)

var warnStyle = headingStyle.Foreground(lipgloss.Color("214"))

// RenderSummary prints the analysis counters and any parse issues.
func RenderSummary(w io.Writer, s *engine.Summary) error {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Analyzed " + s.Root))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  store:        %s\n", s.Store)
	fmt.Fprintf(&b, "  directories:  %d\n", s.Directories)
	fmt.Fprintf(&b, "  files:        %d (%d source)\n", s.Files, s.SourceFiles)
	fmt.Fprintf(&b, "  packages:     %d\n", s.Packages)

	kinds := make([]string, 0, len(s.Edges))
	for kind := range s.Edges {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, s.Edges[kind]))
	}
	if len(parts) == 0 {
		parts = append(parts, "none")
	}
	fmt.Fprintf(&b, "  references:   %s\n", strings.Join(parts, " "))
	fmt.Fprintf(&b, "  attributes:   %d\n", s.Attributes)
	fmt.Fprintf(&b, "  duration:     %s\n", s.Duration.Round(time.Millisecond))

	if len(s.Issues) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("Issues (%d)", len(s.Issues))))
		b.WriteString("\n")
		for _, issue := range s.Issues {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", issue.Severity, relPath(s.Root, issue.File), issue.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderTree prints the project tree with two-space indentation per level.
func RenderTree(w io.Writer, tree *engine.Tree) error {
	if tree == nil || tree.Root == nil {
		return nil
	}
	var b strings.Builder
	writeTreeNode(&b, tree.Root, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTreeNode(b *strings.Builder, node *engine.TreeNode, level int) {
	indent := strings.Repeat("  ", level)
	if node.Kind == "dir" {
		fmt.Fprintf(b, "%s%s/\n", indent, node.Name)
	} else {
		fmt.Fprintf(b, "%s%s\n", indent, node.Name)
	}
	for _, child := range node.Children {
		writeTreeNode(b, child, level+1)
	}
}

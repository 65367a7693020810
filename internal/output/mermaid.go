package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/morozRed/fura/internal/relation"
)

// Mermaid renders a flattened relation as a left-to-right flowchart. Entry
// nodes use the stadium shape; other nodes have round edges.
func Mermaid(flat relation.Flat, root string) string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")
	for _, info := range flat.SortedInfos() {
		label := escapeLabel(nodeLabel(info.Info, root))
		if info.IsEntry {
			fmt.Fprintf(&b, "  n%d([\"%s\"])\n", info.ID, label)
			continue
		}
		fmt.Fprintf(&b, "  n%d(\"%s\")\n", info.ID, label)
	}
	for _, rel := range flat.Relations {
		fmt.Fprintf(&b, "  n%d --> n%d\n", rel.From, rel.To)
	}
	return b.String()
}

// RenderRelation prints one line per edge, importer first.
func RenderRelation(w io.Writer, flat relation.Flat, root string) error {
	var b strings.Builder
	for _, info := range flat.SortedInfos() {
		if info.IsEntry {
			fmt.Fprintf(&b, "%s\n", nodeLabel(info.Info, root))
		}
	}
	if len(flat.Relations) == 0 {
		b.WriteString("  (no relations)\n")
	}
	for _, rel := range flat.Relations {
		from := flat.InfoMap[rel.From]
		to := flat.InfoMap[rel.To]
		fmt.Fprintf(&b, "  %s -> %s\n", relPath(root, from.Path), relPath(root, to.Path))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func nodeLabel(info relation.Info, root string) string {
	label := relPath(root, info.Path)
	if info.Attr != nil && info.Attr.Name != "" {
		label = fmt.Sprintf("%s: %s (%s)", info.Attr.Kind, info.Attr.Name, label)
	}
	return label
}

// escapeLabel replaces characters that break quoted mermaid labels.
func escapeLabel(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "\n", " ").Replace(s)
}

package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/morozRed/fura/internal/engine"
	"github.com/morozRed/fura/internal/parser"
	"github.com/morozRed/fura/internal/relation"
	"github.com/morozRed/fura/internal/unused"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"": FormatText, "TEXT": FormatText, " json ": FormatJSON, "mermaid": FormatMermaid} {
		got, err := ParseFormat(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("yaml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestRenderUnused(t *testing.T) {
	res := unused.Result{
		Files: []unused.File{
			{ID: 1, Name: "dead.ts", Path: "/p/src/dead.ts", Size: 1024},
			{ID: 2, Name: "old.ts", Path: "/p/src/old.ts", Size: 512},
		},
		Packages: []unused.Package{{ID: 1, Name: "lodash", Version: "^4.17.21", Class: "dependencies"}},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderUnused(&buf, res, "/p"))

	out := buf.String()
	assert.Contains(t, out, "Unused files (2)")
	assert.Contains(t, out, "src/dead.ts")
	assert.NotContains(t, out, "/p/src/dead.ts")
	assert.Contains(t, out, "1 KB")
	assert.Contains(t, out, "total: 1.5 KB")
	assert.Contains(t, out, "Unused dependencies (1, runtime only)")
	assert.Contains(t, out, "^4.17.21")
}

func TestRenderUnused_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderUnused(&buf, unused.Result{}, "/p"))
	assert.Contains(t, buf.String(), "No unused files found")
	assert.Contains(t, buf.String(), "No unused dependencies found")
}

func sampleFlat() relation.Flat {
	return relation.Flat{
		InfoMap: map[uint]relation.FlatInfo{
			1: {Info: relation.Info{ID: 1, Name: "index.ts", Path: "/p/src/index.ts", Attr: &relation.Attr{Kind: "page", Name: "Home"}}, IsEntry: true},
			2: {Info: relation.Info{ID: 2, Name: "util.ts", Path: "/p/src/util.ts"}},
		},
		Relations: []relation.Relation{{From: 1, To: 2}},
	}
}

func TestMermaid(t *testing.T) {
	got := Mermaid(sampleFlat(), "/p")
	want := strings.Join([]string{
		"flowchart LR",
		`  n1(["page: Home (src/index.ts)"])`,
		`  n2("src/util.ts")`,
		"  n1 --> n2",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestMermaid_EscapesQuotes(t *testing.T) {
	flat := relation.Flat{InfoMap: map[uint]relation.FlatInfo{
		3: {Info: relation.Info{ID: 3, Path: `/p/a"b.ts`}},
	}}
	assert.Contains(t, Mermaid(flat, "/p"), `n3("a#quot;b.ts")`)
}

func TestRenderRelation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRelation(&buf, sampleFlat(), "/p"))
	assert.Equal(t, "page: Home (src/index.ts)\n  src/index.ts -> src/util.ts\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderRelation(&buf, relation.Flat{}, "/p"))
	assert.Contains(t, buf.String(), "(no relations)")
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	s := &engine.Summary{
		Root:        "/p",
		Store:       "/p/.fura/data.db",
		Directories: 2,
		Files:       5,
		SourceFiles: 4,
		Packages:    1,
		Edges:       map[string]int{"file": 3, "package": 1},
		Attributes:  1,
		Issues:      []parser.ParseIssue{{File: "/p/src/bad.ts", Severity: "warning", Message: "syntax errors"}},
		Duration:    1500 * time.Millisecond,
	}
	require.NoError(t, RenderSummary(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "files:        5 (4 source)")
	assert.Contains(t, out, "references:   file=3 package=1")
	assert.Contains(t, out, "duration:     1.5s")
	assert.Contains(t, out, "[warning] src/bad.ts: syntax errors")
}

func TestRenderTree(t *testing.T) {
	tree := &engine.Tree{Root: &engine.TreeNode{Kind: "dir", Name: "p", Children: []*engine.TreeNode{
		{Kind: "dir", Name: "src", Children: []*engine.TreeNode{{Kind: "file", Name: "index.ts"}}},
		{Kind: "file", Name: "package.json"},
	}}}
	var buf bytes.Buffer
	require.NoError(t, RenderTree(&buf, tree))
	assert.Equal(t, "p/\n  src/\n    index.ts\n  package.json\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

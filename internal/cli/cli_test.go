package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/morozRed/fura/internal/config"
	"github.com/morozRed/fura/internal/engine"
	"github.com/morozRed/fura/internal/unused"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, ".furarc"), `{
  "alias": {"@": "./src"},
  "exclude": ["dist"],
  "include": ["src"],
  "entry": ["src/index.ts"]
}`)
	mustWriteFile(t, filepath.Join(root, "package.json"), `{"dependencies": {"lodash": "^4.0.0", "react": "^18.0.0"}}`)
	mustWriteFile(t, filepath.Join(root, "src", "index.ts"), "import { util } from '@/util'\nimport React from 'react'\n")
	mustWriteFile(t, filepath.Join(root, "src", "util.ts"), "export const util = 1\n")
	mustWriteFile(t, filepath.Join(root, "src", "dead.ts"), "import './util'\n")
	mustWriteFile(t, filepath.Join(root, "dist", "bundle.js"), "import './x'\n")
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeWithStderr(t, args...)
	return stdout, err
}

func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "fura test\n", out)
}

func TestAnalyzeJSON(t *testing.T) {
	root := writeProject(t)
	out, err := execute(t, "analyze", root, "--json")
	require.NoError(t, err)

	var summary engine.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 5, summary.Files)
	assert.Equal(t, 3, summary.SourceFiles)
	assert.Equal(t, 2, summary.Packages)
	assert.Equal(t, 2, summary.Edges["file"])
	assert.Equal(t, 1, summary.Edges["package"])
	assert.FileExists(t, filepath.Join(root, ".fura", "data.db"))
}

func TestAnalyzeProjectFlag(t *testing.T) {
	root := writeProject(t)
	out, err := execute(t, "analyze", root, "--project", "web")
	require.NoError(t, err)
	assert.Contains(t, out, "packages:     2")
	assert.FileExists(t, filepath.Join(root, ".fura", "web.db"))
}

func TestAnalyzeVerboseLogsPhases(t *testing.T) {
	root := writeProject(t)
	out, logs, err := executeWithStderr(t, "analyze", root, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "references:   file=2 package=1 unknown=0")
	assert.Contains(t, logs, `msg="build references"`)
	assert.Contains(t, logs, "aliases=1")

	_, logs, err = executeWithStderr(t, "analyze", root)
	require.NoError(t, err)
	assert.NotContains(t, logs, "build references")
}

func TestUnusedJSON(t *testing.T) {
	root := writeProject(t)
	out, err := execute(t, "unused", root, "--format", "json")
	require.NoError(t, err)

	var res unused.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Files, 1)
	assert.Equal(t, "dead.ts", res.Files[0].Name)
	require.Len(t, res.Packages, 1)
	assert.Equal(t, "lodash", res.Packages[0].Name)
}

func TestUnusedText(t *testing.T) {
	root := writeProject(t)
	out, err := execute(t, "unused", root)
	require.NoError(t, err)
	assert.Contains(t, out, "src/dead.ts")
	assert.Contains(t, out, "lodash")
}

func TestUnusedRequiresEntry(t *testing.T) {
	root := writeProject(t)
	require.NoError(t, os.Remove(filepath.Join(root, ".furarc")))

	_, err := execute(t, "unused", root)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Equal(t, 2, ExitCode(err))
	assert.NoDirExists(t, filepath.Join(root, ".fura"))

	_, err = execute(t, "unused", root, "--entry", "src/index.ts", "--include", "src", "--alias", "@=./src", "--format", "json")
	require.NoError(t, err)
}

func TestUnusedRejectsMermaid(t *testing.T) {
	_, err := execute(t, "unused", writeProject(t), "--format", "mermaid")
	assert.ErrorContains(t, err, "not supported by unused")
}

func TestRelationMermaidToFile(t *testing.T) {
	root := writeProject(t)
	outPath := filepath.Join(t.TempDir(), "graph.mmd")

	_, err := execute(t, "relation", "src/index.ts", root, "--format", "mermaid", "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "flowchart LR")
	assert.Contains(t, string(data), `("src/util.ts")`)
	assert.Contains(t, string(data), "-->")
}

func TestRelationUpText(t *testing.T) {
	root := writeProject(t)
	out, err := execute(t, "relation", "src/util.ts", root, "--direction", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "src/index.ts -> src/util.ts")
	assert.Contains(t, out, "src/dead.ts -> src/util.ts")
}

func TestRelationPackage(t *testing.T) {
	root := writeProject(t)
	out, err := execute(t, "relation", "react", root, "--package", "--format", "json")
	require.NoError(t, err)

	var rel struct {
		Importers []uint `json:"importers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rel))
	assert.Len(t, rel.Importers, 1)

	_, err = execute(t, "relation", "left-pad", root, "--package")
	assert.ErrorIs(t, err, engine.ErrPackageNotFound)
}

func TestRelationErrors(t *testing.T) {
	root := writeProject(t)
	_, err := execute(t, "relation", "src/missing.ts", root)
	assert.ErrorIs(t, err, engine.ErrFileNotFound)
	assert.Equal(t, 1, ExitCode(err))

	_, err = execute(t, "relation", "src/index.ts", root, "--direction", "sideways")
	assert.Error(t, err)
}

func TestTree(t *testing.T) {
	root := writeProject(t)
	out, err := execute(t, "tree", root)
	require.NoError(t, err)
	assert.Contains(t, out, "  src/\n")
	assert.Contains(t, out, "    index.ts\n")
	assert.NotContains(t, out, "bundle.js")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}

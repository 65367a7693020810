package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSourceFile(t *testing.T) {
	cases := map[string]bool{
		"test.js":        true,
		"test.jsx":       true,
		"test.ts":        true,
		"test.tsx":       true,
		"testd.ts":       true,
		"test.ts.ts":     true,
		"src/app.tsx":    true,
		"types.d.ts":     false,
		"types.d.ts.ts":  false,
		"test.JS":        false,
		"test.json":      false,
		"README.md":      false,
		"styles.css":     false,
		"component.vue":  false,
		"dist/index.mjs": false,
	}
	for name, want := range cases {
		assert.Equalf(t, want, IsSourceFile(name), "IsSourceFile(%q)", name)
	}
}

func TestFileTypeOf(t *testing.T) {
	assert.Equal(t, FileTypeJS, FileTypeOf("a.js"))
	assert.Equal(t, FileTypeJS, FileTypeOf("a.jsx"))
	assert.Equal(t, FileTypeTS, FileTypeOf("a.ts"))
	assert.Equal(t, FileTypeTS, FileTypeOf("a.tsx"))
	assert.Equal(t, FileTypeOthers, FileTypeOf("a.d.ts"))
	assert.Equal(t, FileTypeOthers, FileTypeOf("a.md"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatFileSize(0))
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1 KB", FormatFileSize(1024))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2 MB", FormatFileSize(2*1024*1024))
}

func TestParseManifestRuntimeWinsOnCollision(t *testing.T) {
	pkgs, err := ParseManifest([]byte(`{
		"dependencies": {"lodash": "^4.0.0", "react": "^18.0.0"},
		"devDependencies": {"react": "^17.0.0", "vitest": "^1.0.0"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []Package{
		{Name: "lodash", Version: "^4.0.0", Class: PackageRuntime},
		{Name: "react", Version: "^18.0.0", Class: PackageRuntime},
		{Name: "vitest", Version: "^1.0.0", Class: PackageDevelopment},
	}, pkgs)
}

func TestReadManifestMissingAndMalformed(t *testing.T) {
	root := t.TempDir()
	pkgs, err := ReadManifest(root)
	require.NoError(t, err)
	assert.Empty(t, pkgs)

	mustWriteFile(t, filepath.Join(root, ManifestName), "{not json")
	_, err = ReadManifest(root)
	require.Error(t, err)
}

func TestScanRecordsDepthsAndSkipsExcludedNames(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "package.json"), `{"dependencies":{"lodash":"^4.0.0"}}`)
	mustWriteFile(t, filepath.Join(root, "src", "index.ts"), "import './util'\n")
	mustWriteFile(t, filepath.Join(root, "src", "util.ts"), "export const x = 1\n")
	mustWriteFile(t, filepath.Join(root, "src", "types.d.ts"), "declare const y: number\n")
	mustWriteFile(t, filepath.Join(root, "src", "dist", "bundle.js"), "")
	mustWriteFile(t, filepath.Join(root, "dist", "bundle.js"), "")
	mustWriteFile(t, filepath.Join(root, "node_modules", "lodash", "index.js"), "")

	snap, err := Scan(root, []string{"dist"})
	require.NoError(t, err)

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	rootSlash := filepath.ToSlash(absRoot)
	assert.Equal(t, rootSlash, snap.Root)

	dirs := make(map[string]Directory)
	for _, d := range snap.Directories {
		dirs[d.Path] = d
	}
	require.Len(t, dirs, 2)
	assert.Equal(t, 0, dirs[rootSlash].Depth)
	assert.Equal(t, filepath.ToSlash(filepath.Dir(absRoot)), dirs[rootSlash].ParentPath)
	assert.Equal(t, 1, dirs[rootSlash+"/src"].Depth)
	assert.Equal(t, rootSlash, dirs[rootSlash+"/src"].ParentPath)

	files := make(map[string]File)
	for _, f := range snap.Files {
		files[f.Path] = f
		_, ok := dirs[f.ParentPath]
		assert.Truef(t, ok, "parent of %s must be a scanned directory", f.Path)
	}
	assert.Len(t, files, 4)
	assert.Equal(t, FileTypeTS, files[rootSlash+"/src/index.ts"].Type)
	assert.Equal(t, int64(len("import './util'\n")), files[rootSlash+"/src/index.ts"].Size)
	assert.Equal(t, FileTypeOthers, files[rootSlash+"/src/types.d.ts"].Type)
	assert.Equal(t, FileTypeOthers, files[rootSlash+"/package.json"].Type)

	assert.Len(t, snap.SourceFiles(), 2)
	require.Len(t, snap.Packages, 1)
	assert.Equal(t, "lodash", snap.Packages[0].Name)
}

func TestScanRejectsFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	mustWriteFile(t, file, "")

	_, err := Scan(file, nil)
	require.Error(t, err)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/morozRed/fura/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTranslator struct {
	lang    string
	dialect string
	exts    []string
}

func (m mockTranslator) Language() string {
	return m.lang
}

func (m mockTranslator) Extensions() []string {
	return m.exts
}

func (m mockTranslator) Translate(filename string, content []byte, opts Options) (*Translation, error) {
	return &Translation{
		Language: m.dialect,
		Imports: []Import{
			{Kind: ImportStatic, Source: " " + opts.Aliases.Resolve("@/a") + " "},
			{Kind: ImportStatic, Source: opts.Aliases.Resolve("@/a")},
			{Kind: ImportDynamic, Source: "@/a"},
			{Kind: ImportStatic, Source: ""},
		},
		Documentation: &Documentation{Kind: DocPage, Name: string(content)},
	}, nil
}

func TestRegistryTranslatorFor(t *testing.T) {
	r := NewRegistry()
	r.Register(mockTranslator{lang: "mock", exts: []string{".mock", ".mk"}})

	tr, ok := r.TranslatorFor("demo.MOCK")
	require.True(t, ok)
	assert.Equal(t, "mock", tr.Language())

	_, ok = r.TranslatorFor("demo.txt")
	assert.False(t, ok)
	assert.Equal(t, []string{".mk", ".mock"}, r.SupportedExtensions())
}

func TestRegistryTranslateFileNormalizesImports(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockTranslator{lang: "mock", exts: []string{".mock"}})

	path := filepath.Join(root, "home.mock")
	mustWriteFile(t, path, "Home")

	opts := Options{Aliases: resolve.NewAliasTable(map[string]string{"@": "/src"})}
	tr, err := r.TranslateFile(path, opts)
	require.NoError(t, err)
	require.NotNil(t, tr)

	assert.Equal(t, path, tr.Path)
	assert.Equal(t, "mock", tr.Language)
	assert.Equal(t, []Import{
		{Kind: ImportStatic, Source: "/src/a"},
		{Kind: ImportDynamic, Source: "@/a"},
	}, tr.Imports)
	assert.Equal(t, "Home", tr.Documentation.Name)
}

func TestRegistryTranslateFileKeepsGrammarLanguage(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockTranslator{lang: "mock", dialect: "mock-jsx", exts: []string{".mock"}})

	path := filepath.Join(root, "view.mock")
	mustWriteFile(t, path, "View")

	tr, err := r.TranslateFile(path, Options{})
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, "mock-jsx", tr.Language)
}

func TestRegistryTranslateFileUnsupportedAndMissing(t *testing.T) {
	r := NewRegistry()
	r.Register(mockTranslator{lang: "mock", exts: []string{".mock"}})

	tr, err := r.TranslateFile("/nowhere/readme.md", Options{})
	require.NoError(t, err)
	assert.Nil(t, tr)

	_, err = r.TranslateFile(filepath.Join(t.TempDir(), "gone.mock"), Options{})
	require.Error(t, err)
}

func TestDocKindPriority(t *testing.T) {
	assert.Less(t, DocPage.Priority(), DocModule.Priority())
	assert.Less(t, DocModule.Priority(), DocComponent.Priority())
	assert.Equal(t, DocComponent, ParseDocKind("component"))
	assert.Equal(t, DocUnknown, ParseDocKind("widget"))
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

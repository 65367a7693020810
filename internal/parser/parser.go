package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/morozRed/fura/internal/resolve"
)

// Options configures a translation run.
type Options struct {
	// Aliases is applied to every specifier before it is returned.
	Aliases *resolve.AliasTable
}

// Translator extracts imports and documentation from one language family.
type Translator interface {
	// Language returns the language name (e.g., "typescript")
	Language() string

	// Extensions returns file extensions this translator handles
	Extensions() []string

	// Translate extracts imports and the doc attribute from source code
	Translate(filename string, content []byte, opts Options) (*Translation, error)
}

// Registry holds all registered translators
type Registry struct {
	translators map[string]Translator // language name -> translator
	extToLang   map[string]string     // extension -> language name
}

// NewRegistry creates a new translator registry
func NewRegistry() *Registry {
	return &Registry{
		translators: make(map[string]Translator),
		extToLang:   make(map[string]string),
	}
}

// Register adds a translator to the registry
func (r *Registry) Register(t Translator) {
	lang := t.Language()
	r.translators[lang] = t
	for _, ext := range t.Extensions() {
		r.extToLang[ext] = lang
	}
}

// TranslatorFor returns the appropriate translator for a file
func (r *Registry) TranslatorFor(filename string) (Translator, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	t, ok := r.translators[lang]
	return t, ok
}

// SupportedExtensions returns all supported file extensions, sorted
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// TranslateFile reads and translates a single file. Unsupported files return
// nil without error.
func (r *Registry) TranslateFile(path string, opts Options) (*Translation, error) {
	t, ok := r.TranslatorFor(path)
	if !ok {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	translation, err := t.Translate(path, content, opts)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", path, err)
	}
	translation.Path = path
	if translation.Language == "" {
		translation.Language = t.Language()
	}
	translation.Imports = normalizeImports(translation.Imports)
	return translation, nil
}

// normalizeImports trims specifiers and drops empty or repeated ones while
// keeping source order.
func normalizeImports(values []Import) []Import {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[Import]bool, len(values))
	out := make([]Import, 0, len(values))
	for _, value := range values {
		value.Source = strings.TrimSpace(value.Source)
		if value.Source == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

package languages

import "github.com/morozRed/fura/internal/parser"

// NewDefaultRegistry creates a registry with all supported translators
func NewDefaultRegistry() *parser.Registry {
	r := parser.NewRegistry()

	r.Register(NewTypeScriptTranslator())

	return r
}

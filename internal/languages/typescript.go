package languages

import (
	"context"
	"strings"
	"sync"

	"github.com/morozRed/fura/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptTranslator extracts import specifiers and the documentation
// attribute from JavaScript and TypeScript sources.
type TypeScriptTranslator struct {
	js  parserPool
	ts  parserPool
	tsx parserPool
}

// parserPool hands out tree-sitter parsers for one grammar. A sitter.Parser
// must not be shared between goroutines.
type parserPool struct {
	pool sync.Pool
}

func newParserPool(lang *sitter.Language) parserPool {
	return parserPool{pool: sync.Pool{New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(lang)
		return p
	}}}
}

func (pp *parserPool) parse(ctx context.Context, content []byte) (*sitter.Tree, error) {
	p := pp.pool.Get().(*sitter.Parser)
	defer pp.pool.Put(p)
	return p.ParseCtx(ctx, nil, content)
}

// NewTypeScriptTranslator creates a new TypeScript/JavaScript translator
func NewTypeScriptTranslator() *TypeScriptTranslator {
	return &TypeScriptTranslator{
		js:  newParserPool(javascript.GetLanguage()),
		ts:  newParserPool(typescript.GetLanguage()),
		tsx: newParserPool(tsx.GetLanguage()),
	}
}

func (t *TypeScriptTranslator) Language() string {
	return "typescript"
}

func (t *TypeScriptTranslator) Extensions() []string {
	return []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}
}

func (t *TypeScriptTranslator) Translate(filename string, content []byte, opts parser.Options) (*parser.Translation, error) {
	pool, lang := t.poolFor(filename)

	tree, err := pool.parse(context.Background(), content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &walker{content: content, opts: opts}
	w.walk(root)

	return &parser.Translation{
		Path:            filename,
		Language:        lang,
		Imports:         w.imports,
		Documentation:   w.doc,
		HasSyntaxErrors: root.HasError(),
	}, nil
}

func (t *TypeScriptTranslator) poolFor(filename string) (*parserPool, string) {
	switch {
	case strings.HasSuffix(filename, ".tsx"):
		return &t.tsx, "tsx"
	case strings.HasSuffix(filename, ".ts"):
		return &t.ts, "typescript"
	default:
		// .js, .jsx, .mjs and .cjs; the javascript grammar understands JSX.
		return &t.js, "javascript"
	}
}

type walker struct {
	content []byte
	opts    parser.Options
	imports []parser.Import
	doc     *parser.Documentation
}

func (w *walker) walk(node *sitter.Node) {
	switch node.Type() {
	case "import_statement", "export_statement":
		// Only the "from" clause counts; "export default 'x'" exports a value.
		if source := node.ChildByFieldName("source"); source != nil && source.Type() == "string" {
			w.addImport(parser.ImportStatic, source)
		}

	case "call_expression":
		fn := node.ChildByFieldName("function")
		args := node.ChildByFieldName("arguments")
		if fn != nil && fn.Type() == "import" && args != nil && args.NamedChildCount() > 0 {
			if arg := args.NamedChild(0); arg.Type() == "string" {
				w.addImport(parser.ImportDynamic, arg)
			}
		}

	case "comment":
		if w.doc == nil {
			w.doc = parseDocBlock(node.Content(w.content))
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i))
	}
}

func (w *walker) addImport(kind parser.ImportKind, str *sitter.Node) {
	source := unquote(str.Content(w.content))
	if source == "" {
		return
	}
	w.imports = append(w.imports, parser.Import{
		Kind:   kind,
		Source: w.opts.Aliases.Resolve(source),
	})
}

func unquote(raw string) string {
	// Remove quotes
	if len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}
	return raw
}

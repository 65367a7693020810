package parser

// ImportKind distinguishes static from dynamic imports.
type ImportKind string

const (
	ImportStatic  ImportKind = "import"
	ImportDynamic ImportKind = "dynamicImport"
)

// Import is one raw module specifier found in a file. Source already has the
// alias table applied.
type Import struct {
	Kind   ImportKind `json:"kind"`
	Source string     `json:"sourcePath"`
}

// DocKind is the documented identity of a file.
type DocKind string

const (
	DocPage      DocKind = "page"
	DocModule    DocKind = "module"
	DocComponent DocKind = "component"
	DocUnknown   DocKind = "unknown"
)

// Priority orders kinds when one comment block carries several tags.
// Lower wins.
func (k DocKind) Priority() int {
	switch k {
	case DocPage:
		return 0
	case DocModule:
		return 1
	case DocComponent:
		return 2
	default:
		return 3
	}
}

// ParseDocKind maps a tag name to a DocKind.
func ParseDocKind(raw string) DocKind {
	switch DocKind(raw) {
	case DocPage, DocModule, DocComponent:
		return DocKind(raw)
	default:
		return DocUnknown
	}
}

// Documentation is the attribute taken from a file's first qualifying doc block.
type Documentation struct {
	Kind        DocKind `json:"kind"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

// Translation is what a Translator extracts from one file.
type Translation struct {
	Path            string
	Language        string
	Imports         []Import
	Documentation   *Documentation
	HasSyntaxErrors bool
}

// ParseIssue captures non-fatal parser warnings/errors encountered while scanning files.
type ParseIssue struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

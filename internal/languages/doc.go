package languages

import (
	"strings"

	"github.com/morozRed/fura/internal/parser"
)

// parseDocBlock reads "@key value" tag lines from a /* */ comment. It returns
// nil unless the block names a page, module or component, either directly
// (@page Home) or through @name with @group.
func parseDocBlock(raw string) *parser.Documentation {
	if !strings.HasPrefix(raw, "/*") {
		return nil
	}
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "/*"), "*/")

	tags := make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "*"))
		if !strings.HasPrefix(line, "@") {
			continue
		}
		fields := strings.Fields(line[1:])
		if len(fields) == 0 {
			continue
		}
		key := fields[0]
		if _, seen := tags[key]; seen {
			continue
		}
		tags[key] = strings.Join(fields[1:], " ")
	}

	var doc *parser.Documentation
	for _, kind := range []parser.DocKind{parser.DocPage, parser.DocModule, parser.DocComponent} {
		if name, ok := tags[string(kind)]; ok {
			doc = &parser.Documentation{Kind: kind, Name: name}
			break
		}
	}
	if doc == nil {
		name, hasName := tags["name"]
		kind := parser.ParseDocKind(tags["group"])
		if !hasName || kind == parser.DocUnknown {
			return nil
		}
		doc = &parser.Documentation{Kind: kind, Name: name}
	}
	doc.Description = tags["description"]
	return doc
}

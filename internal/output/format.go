// Package output renders analysis results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format selects a renderer.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMermaid Format = "mermaid"
)

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMermaid:
		return FormatMermaid, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: text, json, mermaid)", raw)
	}
}

// PrintJSON writes value as indented JSON.
func PrintJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

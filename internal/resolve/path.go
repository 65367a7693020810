package resolve

import (
	"path"
	"strings"
)

var sourceExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

// IsRelative reports whether a specifier is resolved against the importing
// file's directory.
func IsRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// JoinRelative joins a relative specifier onto parentDir. Other specifiers are
// returned unchanged.
func JoinRelative(specifier, parentDir string) string {
	if !IsRelative(specifier) {
		return specifier
	}
	return path.Join(parentDir, specifier)
}

// ExpandIndexCandidates lists the files an extension-less import may refer to,
// in priority order.
func ExpandIndexCandidates(p string) []string {
	p = strings.TrimSuffix(p, "/")
	out := make([]string, 0, len(sourceExtensions)*2)
	for _, ext := range sourceExtensions {
		out = append(out, p+ext)
	}
	for _, ext := range sourceExtensions {
		out = append(out, p+"/index"+ext)
	}
	return out
}

// ResolveIndexFile keeps p when exists(p), otherwise returns the first
// candidate from ExpandIndexCandidates that exists, otherwise p.
func ResolveIndexFile(p string, exists func(string) bool) string {
	if exists(p) {
		return p
	}
	for _, candidate := range ExpandIndexCandidates(p) {
		if exists(candidate) {
			return candidate
		}
	}
	return p
}

// Package resolve rewrites raw import specifiers into candidate paths.
package resolve

import (
	"path"
	"sort"
	"strings"
)

type aliasEntry struct {
	key    string
	target string
}

// AliasTable maps import prefixes to directory targets. A key only matches on a
// whole path segment, so "@" matches "@/x" and "@" but never "@src/x".
type AliasTable struct {
	entries []aliasEntry
}

// NewAliasTable normalizes targets to end with "/" and orders keys longest
// first so the most specific prefix wins.
func NewAliasTable(aliases map[string]string) *AliasTable {
	t := &AliasTable{entries: make([]aliasEntry, 0, len(aliases))}
	for key, target := range aliases {
		key = strings.TrimSuffix(strings.TrimSpace(key), "/")
		target = strings.TrimSpace(target)
		if key == "" || target == "" {
			continue
		}
		if !strings.HasSuffix(target, "/") {
			target += "/"
		}
		t.entries = append(t.entries, aliasEntry{key: key, target: target})
	}
	sort.Slice(t.entries, func(i, j int) bool {
		if len(t.entries[i].key) != len(t.entries[j].key) {
			return len(t.entries[i].key) > len(t.entries[j].key)
		}
		return t.entries[i].key < t.entries[j].key
	})
	return t
}

// Len returns the number of usable aliases.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Resolve replaces the longest matching alias prefix. Specifiers no key
// matches are returned unchanged.
func (t *AliasTable) Resolve(specifier string) string {
	if t == nil {
		return specifier
	}
	for _, e := range t.entries {
		if specifier != e.key && !strings.HasPrefix(specifier, e.key+"/") {
			continue
		}
		rest := strings.TrimPrefix(specifier[len(e.key):], "/")
		return e.target + rest
	}
	return specifier
}

// ResolveAlias is a one-shot Resolve over an alias map.
func ResolveAlias(specifier string, aliases map[string]string) string {
	return NewAliasTable(aliases).Resolve(specifier)
}

// AbsoluteAliases joins relative alias targets onto root, so resolved
// specifiers become absolute candidate paths.
func AbsoluteAliases(root string, aliases map[string]string) map[string]string {
	out := make(map[string]string, len(aliases))
	for key, target := range aliases {
		if target == "" {
			continue
		}
		if !path.IsAbs(target) {
			target = path.Join(root, target)
		}
		out[key] = target
	}
	return out
}

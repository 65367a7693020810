package ignore

import (
	"path"
	"regexp"
	"strings"
)

// DefaultExcludes are skipped in every scan. node_modules is never part of the
// project graph; its packages are attributed through the manifest instead.
var DefaultExcludes = []string{
	".git/",
	".fura/",
	"node_modules/",
}

type rule struct {
	pattern  *regexp.Regexp
	raw      string
	negated  bool
	dirOnly  bool
	anchored bool
	nested   bool // pattern contains a slash
}

// Matcher applies exclude rules with "last rule wins" behavior. A bare name such
// as "dist" matches that segment at any depth; gitignore-style globs, anchors
// ("/build") and negations ("!keep") are also understood.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from configured exclude entries.
// DefaultExcludes are prepended and can be overridden by negation rules.
func NewMatcher(excludes []string) *Matcher {
	all := make([]string, 0, len(DefaultExcludes)+len(excludes))
	all = append(all, DefaultExcludes...)
	all = append(all, excludes...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}
	return &Matcher{rules: rules}
}

// ShouldIgnore reports whether relPath (slash separated, relative to the scan
// root) is excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)
	if relPath == "" || relPath == "." {
		return false
	}
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	parsed := rule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	if strings.HasPrefix(line, "/") {
		parsed.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if strings.HasSuffix(line, "/") {
		parsed.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	re, err := regexp.Compile("^" + globToRegex(line) + "$")
	if err != nil {
		return rule{}, false
	}
	parsed.raw = line
	parsed.pattern = re
	parsed.nested = strings.Contains(line, "/")
	return parsed, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	segments := strings.Split(relPath, "/")

	if r.dirOnly {
		// A directory rule excludes the directory itself and everything below it.
		limit := len(segments) - 1
		if isDir {
			limit = len(segments)
		}
		for i := 1; i <= limit; i++ {
			if r.matchPrefix(segments[:i]) {
				return true
			}
		}
		return false
	}

	for i := 1; i <= len(segments); i++ {
		if r.matchPrefix(segments[:i]) {
			return true
		}
	}
	return false
}

// matchPrefix checks the rule against the path formed by segments, which is
// either the full path or one of its ancestor directories.
func (r rule) matchPrefix(segments []string) bool {
	if r.anchored || r.nested {
		if r.pattern.MatchString(strings.Join(segments, "/")) {
			return true
		}
		if r.anchored {
			return false
		}
		for i := 1; i < len(segments); i++ {
			if r.pattern.MatchString(strings.Join(segments[i:], "/")) {
				return true
			}
		}
		return false
	}
	return r.pattern.MatchString(segments[len(segments)-1])
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]

		if ch == '*' {
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
			continue
		}

		if ch == '?' {
			b.WriteString("[^/]")
			continue
		}

		if strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)) {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

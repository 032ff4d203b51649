package codeowners

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	f "github.com/multimediallc/owners-gen/pkg/functional"
)

// OwnersFor returns the owners of the given repo-relative file path, per
// the most specific (longest) matching rule, sorted and @-prefixed the
// same way serialized output is. The second return reports whether any
// rule matched.
func (rm RuleMap) OwnersFor(path string) ([]string, bool) {
	path = "/" + strings.TrimPrefix(filepath.ToSlash(path), "/")
	best := ""
	found := false
	for pattern := range rm {
		if !matchRule(pattern, path) {
			continue
		}
		if !found || len(pattern) > len(best) {
			best = pattern
			found = true
		}
	}
	if !found {
		return nil, false
	}
	owners := rm[best].Items()
	slices.Sort(owners)
	return f.Map(owners, formatOwner), true
}

// matchRule tests a rule pattern against a /-rooted file path. Directory
// rules end in a separator and own their whole subtree; other rules are
// globs matched against the full path.
func matchRule(pattern string, path string) bool {
	if strings.HasSuffix(pattern, "/") {
		return strings.HasPrefix(path, pattern)
	}
	matched, err := doublestar.Match(pattern, path)
	return err == nil && matched
}

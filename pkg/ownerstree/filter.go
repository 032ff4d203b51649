package ownerstree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	f "github.com/multimediallc/owners-gen/pkg/functional"
)

// AllowFilter decides whether a filesystem path participates in tree
// building at all.
type AllowFilter interface {
	Allowed(path string) bool
}

// FilterGitMetadata admits everything except paths under a .git directory.
type FilterGitMetadata struct{}

func (FilterGitMetadata) Allowed(path string) bool {
	for _, component := range strings.Split(filepath.ToSlash(path), "/") {
		if component == ".git" {
			return false
		}
	}
	return true
}

// And combines filters; a path is admitted only if every filter admits it.
type And []AllowFilter

func (filters And) Allowed(path string) bool {
	for _, filter := range filters {
		if !filter.Allowed(path) {
			return false
		}
	}
	return true
}

// IgnoreFilter rejects paths matching any of the configured patterns,
// matched against the path relative to the tree root. A pattern ending in
// a separator matches the directory and everything beneath it; any other
// pattern is matched as a glob.
type IgnoreFilter struct {
	root     string
	patterns []string
}

func NewIgnoreFilter(root string, patterns []string) *IgnoreFilter {
	return &IgnoreFilter{root: root, patterns: patterns}
}

func (ig *IgnoreFilter) Allowed(path string) bool {
	rel, err := filepath.Rel(ig.root, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range ig.patterns {
		if strings.HasSuffix(pattern, "/") {
			if strings.HasPrefix(rel+"/", pattern) {
				return false
			}
			continue
		}
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return false
		}
	}
	return true
}

// AllowList admits only a fixed set of OWNERS files and their ancestor
// directories.
type AllowList struct {
	allowedFiles f.Set[string]
}

// NewAllowList builds an AllowList from a list of file paths, typically
// the files tracked by version control. Paths naming anything other than
// an OWNERS file are dropped. Each OWNERS path is expanded to include its
// ancestor directories so the tree walk can reach it. When canonical is
// set, paths are resolved through the filesystem first, which is needed to
// match the absolute paths seen while walking.
func NewAllowList(paths []string, canonical bool) (*AllowList, error) {
	allowed := f.NewSet[string]()
	add := func(path string) error {
		if canonical {
			resolved, err := canonicalPath(path)
			if err != nil {
				return fmt.Errorf("resolving allowed path %s: %w", path, err)
			}
			path = resolved
		}
		allowed.Add(path)
		return nil
	}
	for _, path := range paths {
		if filepath.Base(path) != OwnersFileName {
			continue
		}
		if err := add(path); err != nil {
			return nil, err
		}
		for dir := filepath.Dir(path); dir != "." && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			if err := add(dir); err != nil {
				return nil, err
			}
		}
	}
	return &AllowList{allowedFiles: allowed}, nil
}

func (al *AllowList) Allowed(path string) bool {
	return al.allowedFiles.Contains(path)
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

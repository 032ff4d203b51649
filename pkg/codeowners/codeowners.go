package codeowners

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	f "github.com/multimediallc/owners-gen/pkg/functional"
	"github.com/multimediallc/owners-gen/pkg/ownersfile"
	"github.com/multimediallc/owners-gen/pkg/ownerstree"
)

// RuleMap maps a normalized path pattern to its effective owner set. The
// root directory is keyed "/", subdirectories "/path/to/dir/", and pattern
// overrides as the directory key plus the literal pattern.
type RuleMap map[string]f.Set[string]

// Generate resolves the ownership tree into a flat RuleMap. Parent owners
// are threaded down the tree; a set whose inherit flag is unset falls back
// to implicitInherit.
func Generate(tree *ownerstree.Node, implicitInherit bool) (RuleMap, error) {
	rules := make(RuleMap)
	if err := addRules(tree, tree.Path, f.NewSet[string](), implicitInherit, rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func addRules(node *ownerstree.Node, rootPath string, parentOwners f.Set[string], implicitInherit bool, rules RuleMap) error {
	rel, err := filepath.Rel(rootPath, node.Path)
	if err != nil {
		return fmt.Errorf("relativizing %s against %s: %w", node.Path, rootPath, err)
	}
	key := "/"
	if rel != "." {
		key = "/" + filepath.ToSlash(rel) + "/"
	}

	// Gather directory level owners
	owners := f.NewSet[string]()
	if inherits(node.Owners.AllFiles, implicitInherit) {
		owners.Update(parentOwners)
	}
	owners.Update(node.Owners.AllFiles.Owners)
	rules[key] = owners

	// Overrides inherit from this directory's resolved blanket owners,
	// not from the parent directory directly.
	for pattern, set := range node.Owners.Overrides {
		overrideOwners := f.NewSet[string]()
		if inherits(set, implicitInherit) {
			overrideOwners.Update(owners)
		}
		overrideOwners.Update(set.Owners)
		rules[key+pattern] = overrideOwners
	}

	for _, child := range node.Children {
		if err := addRules(child, rootPath, owners, implicitInherit, rules); err != nil {
			return err
		}
	}
	return nil
}

func inherits(set *ownersfile.OwnersSet, implicitInherit bool) bool {
	if set.Inherit != nil {
		return *set.Inherit
	}
	return implicitInherit
}

// String renders the rule map as CODEOWNERS text: one line per pattern,
// sorted by pattern, owners sorted. The root directory rule is rendered as
// the universal wildcard since CODEOWNERS has no other syntax for the
// repository root. A rule with no owners renders as the bare pattern,
// except an unowned root, which produces no line at all.
func (rm RuleMap) String() string {
	keys := make([]string, 0, len(rm))
	for key := range rm {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		pattern := key
		if key == "/" {
			pattern = "*"
		}
		owners := rm[key].Items()
		if len(owners) == 0 {
			if pattern == "*" {
				continue
			}
			lines = append(lines, pattern)
			continue
		}
		slices.Sort(owners)
		lines = append(lines, pattern+" "+strings.Join(f.Map(owners, formatOwner), " "))
	}
	return strings.Join(lines, "\n")
}

// formatOwner prefixes bare user and team names with @. Identifiers
// already containing @, such as emails, are emitted verbatim.
func formatOwner(owner string) string {
	if strings.Contains(owner, "@") {
		return owner
	}
	return "@" + owner
}

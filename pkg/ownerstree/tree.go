package ownerstree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/multimediallc/owners-gen/pkg/ownersfile"
)

// OwnersFileName is the declaration file looked up in every directory.
const OwnersFileName = "OWNERS"

// Node is one directory carrying its own OWNERS file, plus the root, which
// is always materialized even without one. Directories without a
// declaration are never materialized; declared directories found beneath
// them attach to the nearest declared ancestor.
type Node struct {
	Path     string
	Owners   *ownersfile.File
	Children []*Node
}

func newNode(path string) *Node {
	return &Node{Path: path, Owners: ownersfile.NewFile()}
}

// Load builds the ownership tree rooted at root. filter is consulted for
// every candidate subdirectory and every candidate OWNERS file. The root
// itself is never skipped.
func Load(root string, filter AllowFilter) (*Node, error) {
	rootNode := newNode(root)
	if _, err := rootNode.maybeLoadOwnersFile(root, filter); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if !filter.Allowed(path) {
			// Don't process file tree branches with no allowed files
			continue
		}
		if err := rootNode.loadChildren(path, root, filter); err != nil {
			return nil, err
		}
	}
	return rootNode, nil
}

// maybeLoadOwnersFile parses the OWNERS file directly inside the node's
// directory, if one exists, is a regular file, and is admitted by filter.
func (n *Node) maybeLoadOwnersFile(repoRoot string, filter AllowFilter) (bool, error) {
	ownersPath := filepath.Join(n.Path, OwnersFileName)
	info, err := os.Stat(ownersPath)
	if err != nil || !info.Mode().IsRegular() {
		return false, nil
	}
	if !filter.Allowed(ownersPath) {
		return false, nil
	}
	parsed, err := ownersfile.ParseFile(ownersPath, repoRoot)
	if err != nil {
		return false, err
	}
	n.Owners = parsed
	return true, nil
}

// loadChildren visits dir, attaching a new child node to n if dir declares
// its own OWNERS file, and otherwise passing n through unchanged so deeper
// declared directories attach to it directly.
func (n *Node) loadChildren(dir string, repoRoot string, filter AllowFilter) error {
	node := newNode(dir)
	hasOwnersFile, err := node.maybeLoadOwnersFile(repoRoot, filter)
	if err != nil {
		return err
	}
	accum := n
	if hasOwnersFile {
		accum = node
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !filter.Allowed(path) {
			continue
		}
		if err := accum.loadChildren(path, repoRoot, filter); err != nil {
			return err
		}
	}
	if hasOwnersFile {
		n.Children = append(n.Children, node)
	}
	return nil
}

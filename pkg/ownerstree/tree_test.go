package ownerstree

import (
	"os"
	"path/filepath"
	"testing"

	f "github.com/multimediallc/owners-gen/pkg/functional"
)

func writeTestFile(t *testing.T, root string, rel string, contents string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
}

func checkBlanketOwners(t *testing.T, node *Node, expected []string) {
	t.Helper()
	if !f.SlicesItemsMatch(node.Owners.AllFiles.Owners.Items(), expected) {
		t.Errorf("Expected owners %v at %s, got %v", expected, node.Path, node.Owners.AllFiles.Owners.Items())
	}
}

func TestLoadSingleFileAtRoot(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "OWNERS", "ada.lovelace\ngrace.hopper\nmargaret.hamilton\n")

	tree, err := Load(root, FilterGitMetadata{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tree.Path != root {
		t.Errorf("Expected root path %s, got %s", root, tree.Path)
	}
	checkBlanketOwners(t, tree, []string{"ada.lovelace", "grace.hopper", "margaret.hamilton"})
	if len(tree.Children) != 0 {
		t.Errorf("Expected no children, got %d", len(tree.Children))
	}
}

func TestLoadRootWithoutOwnersFile(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "subdir/OWNERS", "ada.lovelace\n")

	tree, err := Load(root, FilterGitMetadata{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// The root node always exists, even with no declaration of its own
	checkBlanketOwners(t, tree, []string{})
	if len(tree.Children) != 1 {
		t.Fatalf("Expected 1 child, got %d", len(tree.Children))
	}
	checkBlanketOwners(t, tree.Children[0], []string{"ada.lovelace"})
}

func TestLoadCollapsesUndeclaredDirectories(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "OWNERS", "ada.lovelace\n")
	writeTestFile(t, root, "subdir/foo/OWNERS", "margaret.hamilton\n")
	writeTestFile(t, root, "subdir/foo/deep/nested/OWNERS", "katherine.johnson\n")

	tree, err := Load(root, FilterGitMetadata{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("Expected 1 child, got %d", len(tree.Children))
	}
	// subdir has no OWNERS file, so subdir/foo attaches directly to the root
	child := tree.Children[0]
	if child.Path != filepath.Join(root, "subdir/foo") {
		t.Errorf("Expected child path subdir/foo, got %s", child.Path)
	}
	checkBlanketOwners(t, child, []string{"margaret.hamilton"})
	if len(child.Children) != 1 {
		t.Fatalf("Expected 1 grandchild, got %d", len(child.Children))
	}
	grandchild := child.Children[0]
	if grandchild.Path != filepath.Join(root, "subdir/foo/deep/nested") {
		t.Errorf("Expected grandchild path subdir/foo/deep/nested, got %s", grandchild.Path)
	}
	checkBlanketOwners(t, grandchild, []string{"katherine.johnson"})
}

func TestLoadSkipsGitMetadata(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "OWNERS", "ada.lovelace\n")
	writeTestFile(t, root, "subdir/.git/OWNERS", "margaret.hamilton\n")

	tree, err := Load(root, FilterGitMetadata{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("Expected git metadata to be skipped, got %d children", len(tree.Children))
	}
}

func TestLoadPropagatesParseErrors(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "OWNERS", "ada lovelace\n")

	if _, err := Load(root, FilterGitMetadata{}); err == nil {
		t.Error("Expected parse error to abort the load, got nil")
	}
}

func TestLoadDeterministicChildOrder(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "zebra/OWNERS", "ada.lovelace\n")
	writeTestFile(t, root, "alpha/OWNERS", "grace.hopper\n")
	writeTestFile(t, root, "mid/OWNERS", "margaret.hamilton\n")

	tree, err := Load(root, FilterGitMetadata{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tree.Children) != 3 {
		t.Fatalf("Expected 3 children, got %d", len(tree.Children))
	}
	expected := []string{"alpha", "mid", "zebra"}
	for i, child := range tree.Children {
		if child.Path != filepath.Join(root, expected[i]) {
			t.Errorf("Child %d: Expected %s, got %s", i, expected[i], filepath.Base(child.Path))
		}
	}
}

func TestLoadWithAllowList(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "OWNERS", "ada.lovelace\n")
	writeTestFile(t, root, "tracked/OWNERS", "grace.hopper\n")
	writeTestFile(t, root, "untracked/OWNERS", "margaret.hamilton\n")

	allowList, err := NewAllowList([]string{
		filepath.Join(root, "OWNERS"),
		filepath.Join(root, "tracked/OWNERS"),
	}, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tree, err := Load(root, allowList)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	checkBlanketOwners(t, tree, []string{"ada.lovelace"})
	if len(tree.Children) != 1 {
		t.Fatalf("Expected 1 child, got %d", len(tree.Children))
	}
	checkBlanketOwners(t, tree.Children[0], []string{"grace.hopper"})
}

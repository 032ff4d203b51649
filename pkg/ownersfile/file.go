package ownersfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// File is the parsed form of a single OWNERS declaration file: a blanket
// set applying to all files in the directory, plus zero or more override
// sets keyed by the literal glob pattern they were declared under.
type File struct {
	AllFiles  *OwnersSet
	Overrides map[string]*OwnersSet
}

func NewFile() *File {
	return &File{
		AllFiles:  NewOwnersSet(),
		Overrides: make(map[string]*OwnersSet),
	}
}

// Equals compares blanket and override contents.
func (of *File) Equals(other *File) bool {
	if !of.AllFiles.Equals(other.AllFiles) {
		return false
	}
	if len(of.Overrides) != len(other.Overrides) {
		return false
	}
	for pattern, set := range of.Overrides {
		otherSet, found := other.Overrides[pattern]
		if !found || !set.Equals(otherSet) {
			return false
		}
	}
	return true
}

// ParseFile reads and parses the OWNERS file at path, expanding include
// directives. repoRoot anchors absolute include paths and bounds where
// include targets may live.
func ParseFile(path string, repoRoot string) (*File, error) {
	canonRoot, err := canonicalize(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving repo root %s: %w", repoRoot, err)
	}
	canonPath, err := canonicalize(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	p := newParser(canonRoot, canonPath)
	dest := NewFile()
	if err := p.parseFile(canonPath, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// Parse parses declaration text directly. source is used for error context
// and as the base for relative include paths.
func Parse(text string, source string, repoRoot string) (*File, error) {
	p := newParser(repoRoot, source)
	dest := NewFile()
	if err := p.parseText(text, source, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// parser threads the active include chain through recursive parse calls.
// A file appears in the chain only while its own content is being walked,
// so the chain must be pushed immediately before descending into an include
// and popped immediately after, error or not.
type parser struct {
	repoRoot   string
	chain      []string          // active include chain, root to leaf
	includedBy map[string]string // canonical path -> file that included it
}

func newParser(repoRoot string, topLevel string) *parser {
	return &parser{
		repoRoot:   repoRoot,
		chain:      []string{topLevel},
		includedBy: map[string]string{topLevel: ""},
	}
}

func (p *parser) parseFile(path string, dest *File) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return p.parseText(string(data), path, dest)
}

func (p *parser) parseText(text string, source string, dest *File) error {
	current := dest.AllFiles
	inBlanket := true
	for i, raw := range strings.Split(text, "\n") {
		lineNumber := i + 1
		line := cleanLine(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "set ") {
			if p.nested() {
				return fmt.Errorf("set directives are not allowed in included files, found at %s:%d", source, lineNumber)
			}
			isSet, err := current.MaybeProcessSet(line)
			if err != nil {
				return fmt.Errorf("%w, found at %s:%d", err, source, lineNumber)
			}
			if isSet {
				continue
			}
		}
		if pattern, ok := maybeFilePattern(line); ok {
			set, found := dest.Overrides[pattern]
			if !found {
				set = NewOwnersSet()
				dest.Overrides[pattern] = set
			}
			current = set
			inBlanket = false
			continue
		}
		if line == "include" || strings.HasPrefix(line, "include ") {
			if !inBlanket {
				return fmt.Errorf("include is not allowed inside a pattern section, found at %s:%d", source, lineNumber)
			}
			parts := strings.Fields(line)
			if len(parts) != 2 {
				return fmt.Errorf("invalid include format %q: expected 'include <path>', found at %s:%d", line, source, lineNumber)
			}
			if err := p.expandInclude(parts[1], source, dest); err != nil {
				return fmt.Errorf("%w, found at %s:%d", err, source, lineNumber)
			}
			continue
		}
		if strings.ContainsFunc(line, unicode.IsSpace) {
			return fmt.Errorf("invalid user/group %q: cannot contain whitespace, found at %s:%d", line, source, lineNumber)
		}
		current.Owners.Add(line)
	}
	return nil
}

// expandInclude resolves the include target, rejects cycles and escapes,
// and merges the included file's content into dest.
func (p *parser) expandInclude(target string, source string, dest *File) error {
	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = filepath.Join(p.repoRoot, target)
	} else {
		resolved = filepath.Join(filepath.Dir(source), target)
	}
	canon, err := canonicalize(resolved)
	if err != nil {
		return fmt.Errorf("resolving include %s: %w", target, err)
	}
	if !within(p.repoRoot, canon) {
		return fmt.Errorf("include %s escapes the repository root %s", target, p.repoRoot)
	}
	if _, active := p.includedBy[canon]; active {
		return fmt.Errorf("include cycle detected:\n%s", p.describeChain(canon))
	}
	p.includedBy[canon] = source
	p.chain = append(p.chain, canon)
	err = p.parseFile(canon, dest)
	p.chain = p.chain[:len(p.chain)-1]
	delete(p.includedBy, canon)
	return err
}

func (p *parser) nested() bool {
	return len(p.chain) > 1
}

// describeChain renders the active include chain root to leaf, ending with
// the file that closed the cycle.
func (p *parser) describeChain(repeated string) string {
	lines := make([]string, 0, len(p.chain)+1)
	for _, file := range p.chain {
		lines = append(lines, " - "+file)
	}
	lines = append(lines, " - "+repeated)
	return strings.Join(lines, "\n")
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func within(root string, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// cleanLine removes extraneous info in the line, such as comments and
// surrounding whitespace.
func cleanLine(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

var filePatternRE = regexp.MustCompile(`^\[\s*(\S+)\s*]$`)

func maybeFilePattern(line string) (string, bool) {
	m := filePatternRE.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/multimediallc/owners-gen/pkg/codeowners"
	"github.com/multimediallc/owners-gen/pkg/ownerstree"
)

// Options configures a single CODEOWNERS generation run.
type Options struct {
	// RepoRoot is the directory the ownership tree is built from.
	RepoRoot string
	// OutputFile receives the generated text; empty means Out.
	OutputFile string
	// ImplicitInherit is the inheritance policy applied wherever a set
	// leaves its inherit flag unset.
	ImplicitInherit bool
	// Message is an optional line included in the generated banner.
	Message string
	// Out is the destination when no output file is set.
	Out io.Writer
}

// Run executes the full pipeline: build the ownership tree, resolve it,
// and write the bannered CODEOWNERS text to the configured destination.
func Run(opts Options, filter ownerstree.AllowFilter) error {
	tree, err := ownerstree.Load(opts.RepoRoot, filter)
	if err != nil {
		return err
	}
	rules, err := codeowners.Generate(tree, opts.ImplicitInherit)
	if err != nil {
		return err
	}

	notice := autoGeneratedNotice(opts.Message)
	text := notice + "\n\n" + rules.String() + "\n\n" + notice

	if opts.OutputFile == "" {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		_, err := fmt.Fprintln(out, text)
		return err
	}

	if dir := filepath.Dir(opts.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	// Files should end with a newline
	if err := os.WriteFile(opts.OutputFile, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.OutputFile, err)
	}
	return nil
}

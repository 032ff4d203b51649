package git

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

type gitCommandExecutor interface {
	execute(name string, args ...string) ([]byte, error)
}

type realGitExecutor struct {
	dir string
}

func newRealGitExecutor(dir string) gitCommandExecutor {
	return &realGitExecutor{dir: dir}
}

func (e *realGitExecutor) execute(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = e.dir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s %s: %s", name, strings.Join(args, " "), bytes.TrimSpace(exitErr.Stderr))
		}
		return nil, err
	}
	return output, nil
}

// Repo runs git queries against a local repository.
type Repo struct {
	dir      string
	executor gitCommandExecutor
}

func NewRepo(dir string) *Repo {
	return &Repo{dir: dir, executor: newRealGitExecutor(dir)}
}

// TrackedFiles lists the files tracked by git, joined onto the repo
// directory so they line up with paths produced by walking it.
func (r *Repo) TrackedFiles() ([]string, error) {
	output, err := r.executor.execute("git", "ls-files")
	if err != nil {
		return nil, fmt.Errorf("gathering git files: %w", err)
	}
	files := make([]string, 0)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		files = append(files, filepath.Join(r.dir, line))
	}
	return files, scanner.Err()
}

// IsRepo reports whether dir is inside a git work tree.
func (r *Repo) IsRepo() bool {
	_, err := r.executor.execute("git", "rev-parse", "--is-inside-work-tree")
	return err == nil
}

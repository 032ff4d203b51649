package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/boyter/gocodewalker"
	"github.com/multimediallc/owners-gen/internal/app"
	"github.com/multimediallc/owners-gen/internal/config"
	"github.com/multimediallc/owners-gen/internal/git"
	"github.com/multimediallc/owners-gen/pkg/codeowners"
	"github.com/multimediallc/owners-gen/pkg/ownersfile"
	"github.com/multimediallc/owners-gen/pkg/ownerstree"
	"github.com/urfave/cli/v2"
)

func main() {
	var repo string
	rootFlag := &cli.StringFlag{
		Name:        "root",
		Aliases:     []string{"r", "repo"},
		Value:       "./",
		Usage:       "Path to the repository root",
		Destination: &repo,
	}

	cliApp := &cli.App{
		Name:        "owners-gen",
		Usage:       "Generate a CODEOWNERS file from OWNERS files distributed through the file tree",
		Version:     "v0.2.0",
		Description: "",
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Aliases:   []string{"g"},
				Usage:     "Generate the CODEOWNERS file",
				UsageText: "owners-gen generate [options]",
				Description: "Walk the repository for OWNERS files, resolve ownership, and write the " +
					"CODEOWNERS text to stdout or the configured output file.",
				Flags: []cli.Flag{
					rootFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file to write the resulting CODEOWNERS contents into (default: stdout)",
					},
					&cli.BoolFlag{
						Name:    "implicit-inherit",
						Aliases: []string{"i"},
						Value:   true,
						Usage:   "Whether to inherit owners when inheritance is not specified",
					},
					&cli.StringFlag{
						Name:    "message",
						Aliases: []string{"m"},
						Usage:   "Extra message to include in the auto-generated banner",
					},
					&cli.BoolFlag{
						Name:    "git-files-only",
						Aliases: []string{"g"},
						Usage:   "Only consider OWNERS files tracked by git",
					},
				},
				Action: func(cCtx *cli.Context) error {
					return generate(cCtx, repo)
				},
			},
			{
				Name:        "check",
				Aliases:     []string{"c"},
				Usage:       "Check that every OWNERS file in the repository parses",
				UsageText:   "owners-gen check [options]",
				Description: "Walk the repository and parse every OWNERS file, reporting all failures.",
				Flags:       []cli.Flag{rootFlag},
				Action: func(cCtx *cli.Context) error {
					return checkOwnersFiles(repo)
				},
			},
			{
				Name:        "owner",
				Aliases:     []string{"o"},
				Usage:       "Show the effective owners of one or more files",
				UsageText:   "owners-gen owner [options] <file1> [file2]...",
				Description: "Resolve ownership and report the owners of each given repo-relative path.",
				Flags:       []cli.Flag{rootFlag},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() == 0 {
						return fmt.Errorf("at least one target file is required")
					}
					return fileOwners(repo, cCtx.Args().Slice())
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func generate(cCtx *cli.Context, repo string) error {
	conf, err := config.Read(repo)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "WARNING: error reading %s - using default config\n", config.FileName)
	}

	opts := app.Options{
		RepoRoot:        repo,
		OutputFile:      conf.OutputFile,
		ImplicitInherit: *conf.ImplicitInherit,
		Message:         conf.Message,
	}
	if cCtx.IsSet("output") {
		opts.OutputFile = cCtx.String("output")
	}
	if cCtx.IsSet("implicit-inherit") {
		opts.ImplicitInherit = cCtx.Bool("implicit-inherit")
	}
	if cCtx.IsSet("message") {
		opts.Message = cCtx.String("message")
	}
	gitFilesOnly := *conf.GitFilesOnly
	if cCtx.IsSet("git-files-only") {
		gitFilesOnly = cCtx.Bool("git-files-only")
	}

	filter, root, err := buildFilter(repo, conf.Ignore, gitFilesOnly)
	if err != nil {
		return err
	}
	opts.RepoRoot = root
	return app.Run(opts, filter)
}

// buildFilter assembles the admission predicate for tree building. The
// returned root is canonicalized when git tracking is consulted, so that
// allowlist entries line up with walked paths.
func buildFilter(repo string, ignore []string, gitFilesOnly bool) (ownerstree.AllowFilter, string, error) {
	if repoStat, err := os.Lstat(repo); err != nil || !repoStat.IsDir() {
		return nil, "", fmt.Errorf("root is not a directory: %s", repo)
	}
	root := repo
	filters := ownerstree.And{ownerstree.FilterGitMetadata{}}
	if gitFilesOnly {
		abs, err := filepath.Abs(repo)
		if err != nil {
			return nil, "", err
		}
		root, err = filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, "", err
		}
		tracked, err := git.NewRepo(root).TrackedFiles()
		if err != nil {
			return nil, "", err
		}
		allowList, err := ownerstree.NewAllowList(tracked, true)
		if err != nil {
			return nil, "", err
		}
		filters = append(filters, allowList)
	}
	if len(ignore) > 0 {
		filters = append(filters, ownerstree.NewIgnoreFilter(root, ignore))
	}
	return filters, root, nil
}

func checkOwnersFiles(repo string) error {
	if repoStat, err := os.Lstat(repo); err != nil || !repoStat.IsDir() {
		return fmt.Errorf("root is not a directory: %s", repo)
	}

	fileListQueue := make(chan *gocodewalker.File, 100)
	walker := gocodewalker.NewFileWalker(repo, fileListQueue)
	walker.IncludeHidden = true
	walker.ExcludeDirectory = []string{".git"}

	errChan := make(chan error)
	go func() {
		errChan <- walker.Start()
		close(errChan)
	}()

	checked := 0
	failed := 0
	for file := range fileListQueue {
		if filepath.Base(file.Location) != ownerstree.OwnersFileName {
			continue
		}
		checked++
		if _, err := ownersfile.ParseFile(file.Location, repo); err != nil {
			failed++
			_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)
		}
	}
	if err := <-errChan; err != nil {
		return fmt.Errorf("error walking repo: %s", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d OWNERS files failed to parse", failed, checked)
	}
	fmt.Printf("OK: %d OWNERS files parsed\n", checked)
	return nil
}

func fileOwners(repo string, targets []string) error {
	conf, err := config.Read(repo)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "WARNING: error reading %s - using default config\n", config.FileName)
	}
	filter, root, err := buildFilter(repo, conf.Ignore, false)
	if err != nil {
		return err
	}
	tree, err := ownerstree.Load(root, filter)
	if err != nil {
		return err
	}
	rules, err := codeowners.Generate(tree, *conf.ImplicitInherit)
	if err != nil {
		return err
	}

	for _, target := range targets {
		owners, found := rules.OwnersFor(target)
		if !found || len(owners) == 0 {
			fmt.Printf("%s: (unowned)\n", target)
			continue
		}
		fmt.Printf("%s: %s\n", target, strings.Join(owners, " "))
	}
	return nil
}

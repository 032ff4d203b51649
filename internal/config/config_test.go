package config

import (
	"os"
	"path/filepath"
	"testing"

	f "github.com/multimediallc/owners-gen/pkg/functional"
)

func writeConfig(t *testing.T, dir string, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestReadDefaults(t *testing.T) {
	conf, err := Read(t.TempDir())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if conf.ImplicitInherit == nil || !*conf.ImplicitInherit {
		t.Error("Expected implicit_inherit to default to true")
	}
	if conf.GitFilesOnly == nil || *conf.GitFilesOnly {
		t.Error("Expected git_files_only to default to false")
	}
	if conf.OutputFile != "" || conf.Message != "" {
		t.Error("Expected empty output file and message by default")
	}
	if len(conf.Ignore) != 0 {
		t.Errorf("Expected no ignore patterns, got %v", conf.Ignore)
	}
}

func TestReadFullConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
implicit_inherit = false
output_file = ".github/CODEOWNERS"
message = "Generated by owners-gen"
ignore = ["third_party/", "*.gen"]
git_files_only = true
`)

	conf, err := Read(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if *conf.ImplicitInherit {
		t.Error("Expected implicit_inherit false")
	}
	if conf.OutputFile != ".github/CODEOWNERS" {
		t.Errorf("Expected output file from config, got %q", conf.OutputFile)
	}
	if conf.Message != "Generated by owners-gen" {
		t.Errorf("Expected message from config, got %q", conf.Message)
	}
	if !f.SlicesItemsMatch(conf.Ignore, []string{"third_party/", "*.gen"}) {
		t.Errorf("Expected ignore patterns from config, got %v", conf.Ignore)
	}
	if !*conf.GitFilesOnly {
		t.Error("Expected git_files_only true")
	}
}

func TestReadPartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `output_file = "CODEOWNERS"`)

	conf, err := Read(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if conf.OutputFile != "CODEOWNERS" {
		t.Errorf("Expected output file from config, got %q", conf.OutputFile)
	}
	if conf.ImplicitInherit == nil || !*conf.ImplicitInherit {
		t.Error("Expected implicit_inherit to keep its default")
	}
}

func TestReadInvalidToml(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "not [ valid toml")

	conf, err := Read(dir)
	if err == nil {
		t.Error("Expected error for invalid toml")
	}
	if conf == nil || conf.ImplicitInherit == nil || !*conf.ImplicitInherit {
		t.Error("Expected default config returned alongside the error")
	}
}

func TestReadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `implicit_inherit = true`)

	t.Setenv("OWNERS_GEN_IMPLICIT_INHERIT", "false")
	t.Setenv("OWNERS_GEN_OUTPUT_FILE", "docs/CODEOWNERS")
	t.Setenv("OWNERS_GEN_IGNORE", "vendor/,*.lock")

	conf, err := Read(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if *conf.ImplicitInherit {
		t.Error("Expected env var to override implicit_inherit")
	}
	if conf.OutputFile != "docs/CODEOWNERS" {
		t.Errorf("Expected env var to override output file, got %q", conf.OutputFile)
	}
	if !f.SlicesItemsMatch(conf.Ignore, []string{"vendor/", "*.lock"}) {
		t.Errorf("Expected env var to override ignore patterns, got %v", conf.Ignore)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the project config file looked up in the repo root.
const FileName = "ownersgen.toml"

// Config holds project-level generation settings. Values come from
// ownersgen.toml, then OWNERS_GEN_* environment variables, with CLI flags
// applied on top by the caller.
type Config struct {
	ImplicitInherit *bool    `toml:"implicit_inherit" env:"OWNERS_GEN_IMPLICIT_INHERIT"`
	OutputFile      string   `toml:"output_file" env:"OWNERS_GEN_OUTPUT_FILE"`
	Message         string   `toml:"message" env:"OWNERS_GEN_MESSAGE"`
	Ignore          []string `toml:"ignore" env:"OWNERS_GEN_IGNORE" envSeparator:","`
	GitFilesOnly    *bool    `toml:"git_files_only" env:"OWNERS_GEN_GIT_FILES_ONLY"`
}

func defaultConfig() *Config {
	implicitInherit := true
	gitFilesOnly := false
	return &Config{
		ImplicitInherit: &implicitInherit,
		OutputFile:      "",
		Message:         "",
		Ignore:          []string{},
		GitFilesOnly:    &gitFilesOnly,
	}
}

// Read loads the config for the repo at path. A missing file yields the
// defaults; environment overrides are applied either way.
func Read(path string) (*Config, error) {
	config := defaultConfig()

	fileName := filepath.Join(path, FileName)
	if _, err := os.Stat(fileName); !errors.Is(err, os.ErrNotExist) {
		file, err := os.ReadFile(fileName)
		if err != nil {
			return defaultConfig(), err
		}
		if err := toml.Unmarshal(file, config); err != nil {
			return defaultConfig(), err
		}
	}

	if err := env.Parse(config); err != nil {
		return config, err
	}
	return config, nil
}

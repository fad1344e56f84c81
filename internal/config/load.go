package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// DefaultPath is $HOME/.myshell/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DirName, ConfigurationName)
	}
	return filepath.Join(home, DirName, ConfigurationName)
}

// Load reads and validates the configuration at path. path may be the file
// or the directory holding it. Keys missing from the file keep their
// defaults.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	if isDir, _ := afero.IsDir(fs, path); isDir {
		path = filepath.Join(path, ConfigurationName)
	}

	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	out := Default()
	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return out, nil
}

// Initialize writes the default configuration into dir, leaving an existing
// file alone.
func Initialize(fs afero.Fs, dir string, logger *log.Logger) error {
	path := filepath.Join(dir, ConfigurationName)
	if exists, err := afero.Exists(fs, path); err != nil {
		return err
	} else if exists {
		logger.Printf("%s already exists, skipping", path)
		return nil
	}

	if err := fs.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, defaultConfigData, 0600); err != nil {
		return err
	}
	logger.Printf("Wrote %s", path)
	return nil
}

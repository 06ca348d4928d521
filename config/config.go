// Package config reads the optional .polyglot.yaml file.
//
// When present in the working directory it supplies defaults for the
// translate flags; explicit flags always win.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file polyglot looks for in the working directory.
const FileName = ".polyglot.yaml"

// File is the .polyglot.yaml schema.
type File struct {
	// TargetLang is the default --target_lang value.
	TargetLang string `yaml:"target_lang,omitempty"`
	// SourceLang is the default --source_lang value.
	SourceLang string `yaml:"source_lang,omitempty"`
	// OutputDirectory is the default --output_directory value.
	OutputDirectory string `yaml:"output_directory,omitempty"`
}

// Load reads the config file from dir. A missing file is not an error and
// yields an empty config.
func Load(dir string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return &f, nil
}

// Package config loads docustore's runtime configuration, mirroring
// dynamodb/cmd/ddb/config.go's "search upward for a yaml file, fall back
// to defaults" approach (github.com/acksell/bezos).
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "docustore.yaml"

// Config holds the options recognized by spec.md §6.
type Config struct {
	// DataDir is the root directory under which "data/" and
	// "data/index/" are created (spec.md §4.7).
	DataDir string `yaml:"dataDir"`

	// SchemaPersistenceIntervalSeconds is the period of the
	// schema-persist tick (spec.md §4.7, §6). Default 1.0.
	SchemaPersistenceIntervalSeconds float64 `yaml:"schemaPersistenceIntervalSeconds"`

	// LogLevel and LogFormat are read from docustore.yaml in the shape of
	// logging.Config; cmd/docustore does not apply them to its logger.
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// Default returns docustore's default configuration.
func Default() Config {
	return Config{
		DataDir:                          "./data",
		SchemaPersistenceIntervalSeconds: 1.0,
		LogLevel:                         "info",
		LogFormat:                        "logfmt",
	}
}

// Load searches upward from the current directory for docustore.yaml,
// merging any values it finds over Default(). Missing or unreadable
// files are not an error — docustore.yaml is optional.
func Load() Config {
	cfg := Default()

	path := findConfigFile()
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	_ = yaml.Unmarshal(data, &cfg)
	return cfg
}

func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

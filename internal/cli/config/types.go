// Package config provides configuration management for the sqla2lint CLI.
//
// The lint section reuses core.LintConfig, which is shared with the
// checker; it is re-exported here so CLI code need not import pkg/core.
package config

import (
	"github.com/leapstack-labs/sqla2lint/pkg/core"
)

// LintConfig is an alias for the shared lint configuration.
type LintConfig = core.LintConfig

// RuleOptions is an alias for the shared rule options type.
type RuleOptions = core.RuleOptions

// CacheConfig controls the result cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// ServeConfig holds configuration for the HTTP check server.
type ServeConfig struct {
	Addr  string `koanf:"addr"`
	Watch bool   `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	OutputFormat string      `koanf:"output"`
	Verbose      bool        `koanf:"verbose"`
	Workers      int         `koanf:"workers"`
	Exclude      []string    `koanf:"exclude"`
	DisableNoQA  bool        `koanf:"disable_noqa"`
	DocsURL      string      `koanf:"docs_url"`
	Cache        CacheConfig `koanf:"cache"`
	Serve        ServeConfig `koanf:"serve"`
	Lint         *LintConfig `koanf:"lint"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when there is none. Relative paths resolve against it.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultCacheFile = ".sqla2lint/cache.db"
	DefaultServeAddr = "127.0.0.1:8787"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ConfigFileNames are searched, in order, in each directory.
var ConfigFileNames = []string{"sqla2lint.yaml", "sqla2lint.yml", ".sqla2lint.yaml", ".sqla2lint.yml"}

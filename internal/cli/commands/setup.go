package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/sqla2lint/internal/cli/config"
	"github.com/leapstack-labs/sqla2lint/internal/cli/output"
	"github.com/leapstack-labs/sqla2lint/internal/engine"
	"github.com/leapstack-labs/sqla2lint/internal/state"
	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a renderer. A non-empty
// format overrides the configured output mode.
func NewCommandContext(cmd *cobra.Command, format string) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.OutputFormat)
	if format != "" {
		mode = output.Mode(format)
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// EngineOptions adjusts the engine a command builds on top of the
// configuration.
type EngineOptions struct {
	Select      []string
	Disable     []string
	Threshold   *core.Severity
	DisableNoQA bool
	NoCache     bool
}

// NewEngine builds an engine from the configuration. The returned cleanup
// closes the result cache and must be called (typically via defer).
func (c *CommandContext) NewEngine(opts EngineOptions) (*engine.Engine, *state.Store, func(), error) {
	lintCfg, err := c.Cfg.BuildLintConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	for _, id := range opts.Select {
		lintCfg.Select(normalizeID(id))
	}
	for _, id := range opts.Disable {
		lintCfg.Disable(normalizeID(id))
	}

	vocab, err := c.Cfg.BuildVocabulary()
	if err != nil {
		return nil, nil, nil, err
	}

	var store *state.Store
	cleanup := func() {}
	if c.Cfg.Cache.Enabled && !opts.NoCache {
		store, err = openStore(c.Cfg.Cache.Path, c.Logger)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup = func() { _ = store.Close() }
	}

	eng := engine.New(engine.Config{
		Vocabulary:  vocab,
		Lint:        lintCfg,
		Store:       store,
		Workers:     c.Cfg.Workers,
		Exclude:     c.Cfg.Exclude,
		DisableNoQA: c.Cfg.DisableNoQA || opts.DisableNoQA,
		Threshold:   opts.Threshold,
		Logger:      c.Logger,
	})
	return eng, store, cleanup, nil
}

// openStore opens the result cache, creating its directory if needed.
func openStore(path string, logger *slog.Logger) (*state.Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create cache directory: %w", err)
			}
		}
	}

	store := state.NewStore(logger)
	if err := store.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}
	return store, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// defaults with the cache disabled.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		OutputFormat: os.Getenv(config.EnvPrefix + "OUTPUT"),
		Serve:        config.ServeConfig{Addr: config.DefaultServeAddr},
	}
}

// parseThreshold converts a --severity value.
func parseThreshold(s string) (*core.Severity, error) {
	if s == "" {
		return nil, nil
	}
	sev, ok := core.ParseSeverity(s)
	if !ok {
		return nil, fmt.Errorf("invalid severity %q (valid: error, warning, info, hint)", s)
	}
	return &sev, nil
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

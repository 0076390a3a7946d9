// Package engine checks Python files on disk: it discovers sources, runs the
// lint checker over them with a pool of parsers, applies noqa comments and
// the severity threshold, and consults the result cache.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqla2lint/internal/state"
	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
	"github.com/leapstack-labs/sqla2lint/pkg/parser"
)

// Config holds engine configuration.
type Config struct {
	// Vocabulary is the mapping vocabulary. Nil means lint.DefaultVocabulary.
	Vocabulary *lint.Vocabulary
	// Lint selects rules and overrides severities and options.
	Lint *lint.Config
	// Store caches results between runs. Nil disables caching.
	Store *state.Store
	// Workers is the number of concurrent parsers. Zero means GOMAXPROCS.
	Workers int
	// Exclude holds glob patterns skipped during discovery.
	Exclude []string
	// DisableNoQA reports diagnostics even on lines with a noqa comment.
	DisableNoQA bool
	// Threshold drops diagnostics less severe than it. Nil keeps everything.
	Threshold *core.Severity
	Logger    *slog.Logger
}

// Engine checks files.
type Engine struct {
	checker     *lint.Checker
	store       *state.Store
	workers     int
	exclude     []string
	noqa        bool
	threshold   *core.Severity
	fingerprint string
	logger      *slog.Logger
}

// FileResult is the outcome for one file. Err is set when the file could
// not be read or parsed; such a file has no diagnostics.
type FileResult struct {
	Path        string
	Diagnostics []lint.Diagnostic
	Err         error
	Cached      bool
}

// Report is the outcome of a run.
type Report struct {
	Files    []FileResult
	Duration time.Duration
	RunID    string
}

// Issues returns the total number of diagnostics.
func (r *Report) Issues() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Diagnostics)
	}
	return n
}

// Errors returns the number of files that failed to read or parse.
func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	checker := lint.NewChecker(cfg.Vocabulary, cfg.Lint)
	return &Engine{
		checker:     checker,
		store:       cfg.Store,
		workers:     workers,
		exclude:     cfg.Exclude,
		noqa:        !cfg.DisableNoQA,
		threshold:   cfg.Threshold,
		fingerprint: Fingerprint(checker, cfg.Lint, !cfg.DisableNoQA),
		logger:      logger,
	}
}

// Checker returns the checker the engine runs.
func (e *Engine) Checker() *lint.Checker {
	return e.checker
}

// Fingerprint returns the ruleset fingerprint used as part of cache keys.
func (e *Engine) Fingerprint() string {
	return e.fingerprint
}

// Run discovers Python files under paths and checks them. When a store is
// configured the run is recorded in its history.
func (e *Engine) Run(ctx context.Context, paths []string) (*Report, error) {
	files, err := Discover(paths, e.exclude)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	var run *state.Run
	if e.store != nil {
		run, err = e.store.CreateRun(ctx)
		if err != nil {
			e.logger.Warn("failed to record run", slog.String("error", err.Error()))
		}
	}

	report, checkErr := e.CheckFiles(ctx, files)

	if run != nil {
		status, msg := state.RunStatusCompleted, ""
		files, issues := 0, 0
		if checkErr != nil {
			status, msg = state.RunStatusFailed, checkErr.Error()
		} else {
			report.RunID = run.ID
			files, issues = len(report.Files), report.Issues()
		}
		// The run context may already be cancelled; record the outcome anyway.
		if err := e.store.CompleteRun(context.WithoutCancel(ctx), run.ID, status, files, issues, msg); err != nil {
			e.logger.Warn("failed to complete run", slog.String("id", run.ID), slog.String("error", err.Error()))
		}
	}

	return report, checkErr
}

// CheckFiles checks the given files concurrently. Each worker owns one
// parser. File-level failures are reported in the results, not returned;
// the error is non-nil only when ctx is cancelled.
func (e *Engine) CheckFiles(ctx context.Context, files []string) (*Report, error) {
	start := time.Now()
	results := make([]FileResult, len(files))

	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range min(e.workers, len(files)) {
		g.Go(func() error {
			p := parser.New()
			defer p.Close()
			for i := range jobs {
				results[i] = e.checkFile(gctx, p, files[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b FileResult) int {
		return strings.Compare(a.Path, b.Path)
	})

	report := &Report{Files: results, Duration: time.Since(start)}
	e.logger.Debug("checked files",
		slog.Int("files", len(results)),
		slog.Int("issues", report.Issues()),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// CheckSource checks in-memory source. The cache is not consulted.
func (e *Engine) CheckSource(ctx context.Context, path string, src []byte) FileResult {
	p := parser.New()
	defer p.Close()
	return e.applyThreshold(e.checkSource(ctx, p, path, src))
}

func (e *Engine) checkFile(ctx context.Context, p *parser.Parser, path string) FileResult {
	src, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("failed to read %s: %w", path, err)}
	}

	key := state.Key{Path: path, ContentHash: ContentHash(src), Ruleset: e.fingerprint}
	if e.store != nil {
		if cached, ok := e.lookup(ctx, key); ok {
			return e.applyThreshold(cached)
		}
	}

	result := e.checkSource(ctx, p, path, src)
	if e.store != nil && ctx.Err() == nil {
		e.save(ctx, key, result)
	}
	return e.applyThreshold(result)
}

func (e *Engine) checkSource(ctx context.Context, p *parser.Parser, path string, src []byte) FileResult {
	mod, err := p.Parse(ctx, src)
	if err != nil {
		e.logger.Debug("parse failed", slog.String("path", path), slog.String("error", err.Error()))
		return FileResult{Path: path, Err: err}
	}

	diags := e.checker.Check(mod)
	if e.noqa {
		diags = ParseNoQA(mod.Comments).Filter(diags)
	}
	return FileResult{Path: path, Diagnostics: diags}
}

func (e *Engine) lookup(ctx context.Context, key state.Key) (FileResult, bool) {
	cached, ok, err := e.store.GetResult(ctx, key)
	if err != nil {
		e.logger.Warn("cache lookup failed", slog.String("path", key.Path), slog.String("error", err.Error()))
		return FileResult{}, false
	}
	if !ok {
		return FileResult{}, false
	}

	result := FileResult{Path: key.Path, Diagnostics: cached.Diagnostics, Cached: true}
	if cached.ParseError != "" {
		var perr parser.ParseError
		if err := json.Unmarshal([]byte(cached.ParseError), &perr); err != nil {
			return FileResult{}, false
		}
		result.Err = &perr
		result.Diagnostics = nil
	}
	return result, true
}

// save caches a result. Only parse errors are cacheable; read errors and
// cancellations are not.
func (e *Engine) save(ctx context.Context, key state.Key, result FileResult) {
	entry := &state.Result{Diagnostics: result.Diagnostics}
	if result.Err != nil {
		var perr *parser.ParseError
		if !errors.As(result.Err, &perr) {
			return
		}
		data, err := json.Marshal(perr)
		if err != nil {
			return
		}
		entry.ParseError = string(data)
	}

	if err := e.store.PutResult(ctx, key, entry); err != nil {
		e.logger.Warn("cache store failed", slog.String("path", key.Path), slog.String("error", err.Error()))
	}
}

func (e *Engine) applyThreshold(result FileResult) FileResult {
	if e.threshold == nil || len(result.Diagnostics) == 0 {
		return result
	}
	kept := make([]lint.Diagnostic, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		// Lower values are more severe.
		if d.Severity <= *e.threshold {
			kept = append(kept, d)
		}
	}
	result.Diagnostics = kept
	return result
}

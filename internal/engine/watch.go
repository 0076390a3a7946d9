package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long the watcher waits for further changes before
// re-checking.
const DebounceInterval = 100 * time.Millisecond

// Watch re-checks Python files under paths whenever they change and passes
// each report to onChange. It blocks until ctx is cancelled.
func (e *Engine) Watch(ctx context.Context, paths []string, onChange func(*Report)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Explicit files are watched through their directory and filtered.
	explicit := make(map[string]bool)
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			if err := e.watchDirRecursive(watcher, path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			continue
		}
		explicit[filepath.Clean(path)] = true
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	e.logger.Info("watching for changes", slog.Int("paths", len(paths)))

	pending := make(map[string]bool)
	fire := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			name := filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(name); err == nil && info.IsDir() {
					if !e.underRoot(paths, explicit, name, true) {
						e.logger.Debug("skipping excluded directory", slog.String("dir", name))
						continue
					}
					if err := e.watchDirRecursive(watcher, name); err != nil {
						e.logger.Warn("failed to watch new directory", slog.String("dir", name), slog.String("error", err.Error()))
					}
					continue
				}
			}
			if !e.relevant(paths, explicit, name) {
				continue
			}

			pending[name] = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(DebounceInterval, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			changed := make([]string, 0, len(pending))
			for name := range pending {
				if _, err := os.Stat(name); err == nil {
					changed = append(changed, name)
				}
			}
			clear(pending)
			if len(changed) == 0 {
				continue
			}
			slices.Sort(changed)

			e.logger.Debug("files changed, re-checking", slog.Int("files", len(changed)))
			report, err := e.CheckFiles(ctx, changed)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				e.logger.Error("re-check failed", slog.String("error", err.Error()))
				continue
			}
			onChange(report)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// relevant reports whether a changed file should be re-checked.
func (e *Engine) relevant(roots []string, explicit map[string]bool, name string) bool {
	if explicit[name] {
		return true
	}
	return IsPythonFile(name) && e.underRoot(roots, explicit, name, false)
}

// underRoot reports whether path lies inside a watched directory without
// passing through an excluded directory on the way.
func (e *Engine) underRoot(roots []string, explicit map[string]bool, path string, isDir bool) bool {
	for _, root := range roots {
		root = filepath.Clean(root)
		if explicit[root] {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if !e.excludedBelow(root, rel, isDir) {
			return true
		}
	}
	return false
}

// excludedBelow checks every element of rel against the exclude rules. All
// but the last element are directories; the last one is when isDir is set.
func (e *Engine) excludedBelow(root, rel string, isDir bool) bool {
	parts := strings.Split(rel, string(filepath.Separator))
	cur := root
	for i, part := range parts {
		cur = filepath.Join(cur, part)
		if isExcluded(root, cur, part, isDir || i < len(parts)-1, e.exclude) {
			return true
		}
	}
	return false
}

// watchDirRecursive adds a directory and all subdirectories to the watcher,
// skipping excluded directories.
func (e *Engine) watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isExcluded(dir, path, d.Name(), true, e.exclude) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

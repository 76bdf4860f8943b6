// Package watch reports changes to tree, markup and configuration files.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType classifies a changed file.
type ChangeType int

const (
	ChangeTree ChangeType = iota
	ChangeMarkup
	ChangeConfig
	ChangeOther
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTree:
		return "tree"
	case ChangeMarkup:
		return "markup"
	case ChangeConfig:
		return "config"
	default:
		return "other"
	}
}

// Change is a detected file change.
type Change struct {
	Path    string
	Type    ChangeType
	Removed bool
}

// Config configures a Watcher.
type Config struct {
	// Paths are files or directories to watch. Directories are not walked.
	Paths []string

	// Ignore patterns to skip (names, path segments or globs).
	Ignore []string

	// Debounce is the quiet period before a batch of changes is reported.
	Debounce time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors files for changes.
type Watcher struct {
	config   Config
	logger   *slog.Logger
	onChange func([]Change)

	// files restricts events in a watched directory to the named files.
	// Single files are watched through their directory so that editors
	// replacing the file keep being observed.
	files map[string]map[string]bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// New creates a watcher. Paths must exist.
func New(config Config, logger *slog.Logger) (*Watcher, error) {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		config: config,
		logger: logger.With("component", "watch"),
		files:  make(map[string]map[string]bool),
	}
	for _, p := range config.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			w.files[abs] = nil
			continue
		}
		dir := filepath.Dir(abs)
		if w.files[dir] == nil {
			if _, watchAll := w.files[dir]; watchAll {
				continue
			}
			w.files[dir] = make(map[string]bool)
		}
		w.files[dir][filepath.Base(abs)] = true
	}
	return w, nil
}

// OnChange sets the callback receiving each debounced batch.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for dir := range w.files {
		if err := fsw.Add(dir); err != nil {
			return err
		}
	}

	pending := make(map[string]Change)
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.accept(event.Name) {
				continue
			}
			pending[event.Name] = Change{
				Path:    event.Name,
				Type:    classifyChange(event.Name),
				Removed: event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename),
			}
			timer.Reset(w.config.Debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-timer.C:
			w.flush(pending)
			pending = make(map[string]Change)
		}
	}
}

func (w *Watcher) flush(pending map[string]Change) {
	if len(pending) == 0 {
		return
	}
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()
	if callback == nil {
		return
	}

	changes := make([]Change, 0, len(pending))
	for _, c := range pending {
		changes = append(changes, c)
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	callback(changes)
}

// accept reports whether an event path is watched and not ignored.
func (w *Watcher) accept(name string) bool {
	if w.shouldIgnore(name) {
		return false
	}
	names, ok := w.files[filepath.Dir(name)]
	if !ok {
		return false
	}
	return names == nil || names[filepath.Base(name)]
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		if strings.ContainsAny(pattern, "*?[") {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}
		if pathHasSegment(normalized, pattern) {
			return true
		}
	}
	return false
}

func pathHasSegment(path, segment string) bool {
	for _, part := range splitPathSegments(path) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}

// classifyChange determines the type of change from the file name.
func classifyChange(p string) ChangeType {
	base := strings.ToLower(filepath.Base(p))
	ext := filepath.Ext(base)
	if strings.TrimSuffix(base, ext) == "eghact" {
		return ChangeConfig
	}
	switch ext {
	case ".yaml", ".yml":
		return ChangeTree
	case ".html", ".htm":
		return ChangeMarkup
	default:
		return ChangeOther
	}
}

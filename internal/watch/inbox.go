// Package watch turns files dropped into a directory into prediction requests.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/utils"
)

const (
	DefaultPattern  = "*.csv"
	DefaultDebounce = 500 * time.Millisecond

	eventBuffer = 128
)

// Config describes which directory to watch and which files to pick up.
type Config struct {
	Dir string `mapstructure:"dir"`
	// Pattern is a doublestar pattern matched against the file name.
	Pattern string `mapstructure:"pattern"`
	// Debounce is how long to wait for more writes before a file is handled.
	Debounce time.Duration `mapstructure:"debounce"`
	// Existing makes the inbox handle files already present at start.
	Existing bool `mapstructure:"existing"`
}

// Handler processes one file. Its error is logged and never stops the inbox.
type Handler func(ctx context.Context, path string) error

// Inbox hands every matching file written to a directory to a Handler, one
// file at a time and in the order the files were first seen.
type Inbox struct {
	cfg     Config
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Inbox, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch directory is required")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(cfg.Pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", cfg.Pattern)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory %q is not a directory", cfg.Dir)
	}

	fsw, err := fsnotify.NewBufferedWatcher(eventBuffer)
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(cfg.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %q: %w", cfg.Dir, err)
	}

	return &Inbox{cfg: cfg, watcher: fsw, logger: logger}, nil
}

// Run blocks until ctx is done or the watcher is closed.
func (i *Inbox) Run(ctx context.Context, handle Handler) error {
	defer i.watcher.Close()

	i.logger.Info("watching inbox",
		zap.String("dir", i.cfg.Dir),
		zap.String("pattern", i.cfg.Pattern),
		zap.Duration("debounce", i.cfg.Debounce),
	)

	if i.cfg.Existing {
		existing, err := i.existing()
		if err != nil {
			return err
		}
		i.handleAll(ctx, existing, handle)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-i.watcher.Events:
			if !ok {
				return nil
			}
			batch := newBatch()
			i.collect(batch, event)
			if batch.len() == 0 {
				continue
			}

			// Writers usually emit several events per file; let them settle.
			if err := utils.WaitFor(ctx, i.cfg.Debounce); err != nil {
				return nil
			}
			i.drain(batch)
			i.handleAll(ctx, batch.paths, handle)

		case err, ok := <-i.watcher.Errors:
			if !ok {
				return nil
			}
			i.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// Close stops the inbox.
func (i *Inbox) Close() error {
	return i.watcher.Close()
}

func (i *Inbox) existing() ([]string, error) {
	entries, err := os.ReadDir(i.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", i.cfg.Dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(i.cfg.Dir, entry.Name())
		if i.matches(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (i *Inbox) drain(b *batch) {
	for {
		select {
		case event, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			i.collect(b, event)
		default:
			return
		}
	}
}

func (i *Inbox) collect(b *batch, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !i.matches(event.Name) {
		i.logger.Debug("ignoring file", zap.String("path", event.Name))
		return
	}
	b.add(event.Name)
}

func (i *Inbox) matches(path string) bool {
	ok, err := doublestar.Match(i.cfg.Pattern, filepath.Base(path))
	return err == nil && ok
}

func (i *Inbox) handleAll(ctx context.Context, paths []string, handle Handler) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			i.logger.Debug("skipping vanished file", zap.String("path", path))
			continue
		}

		if err := handle(ctx, path); err != nil {
			i.logger.Info("file failed", zap.String("path", path), zap.Error(err))
			continue
		}
		i.logger.Debug("file handled", zap.String("path", path))
	}
}

type batch struct {
	paths []string
	seen  map[string]bool
}

func newBatch() *batch {
	return &batch{seen: make(map[string]bool)}
}

func (b *batch) add(path string) {
	if b.seen[path] {
		return
	}
	b.seen[path] = true
	b.paths = append(b.paths, path)
}

func (b *batch) len() int {
	return len(b.paths)
}

package server

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ontograph/ontograph/graph"
	"github.com/ontograph/ontograph/loader"
	"github.com/ontograph/ontograph/query"
)

// WatcherConfig configures the ontology file watcher.
type WatcherConfig struct {
	// Path is the ontology file to watch
	Path string

	// DebounceDelay is how long to wait for more changes before reloading
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// Watcher reloads the served ontology when its source file changes.
// Editors often replace files with rename-and-create, so the watch is
// placed on the parent directory and events are filtered by name.
type Watcher struct {
	config  WatcherConfig
	handler *Handler
	formats *loader.Registry
	metrics *Metrics
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: coalesce a burst of events into one reload
	pendingMu sync.Mutex
	pending   bool
}

// NewWatcher creates a watcher that rebuilds the graph from
// config.Path and swaps it into the handler.
func NewWatcher(config WatcherConfig, handler *Handler, formats *loader.Registry, metrics *Metrics) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}
	if formats == nil {
		formats = loader.DefaultRegistry
	}

	return &Watcher{
		config:  config,
		handler: handler,
		formats: formats,
		metrics: metrics,
		watcher: fsw,
		logger:  logger,
	}, nil
}

// Start begins watching. It returns once the watch is established; the
// event loop runs until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.config.Path)); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("ontology watcher started", slog.String("path", w.config.Path))
	return nil
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) processEvents(ctx context.Context) {
	timer := time.NewTimer(w.config.DebounceDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.config.Path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.pendingMu.Lock()
			if !w.pending {
				w.pending = true
				timer.Reset(w.config.DebounceDelay)
			}
			w.pendingMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))

		case <-timer.C:
			w.pendingMu.Lock()
			w.pending = false
			w.pendingMu.Unlock()
			w.Reload()
		}
	}
}

// Reload rebuilds the graph from the watched file immediately. A file
// that fails to parse or validate leaves the previous graph in place.
func (w *Watcher) Reload() {
	doc, err := w.formats.ParseFile(w.config.Path)
	if err != nil {
		w.logger.Error("reload failed, keeping previous ontology",
			slog.String("path", w.config.Path),
			slog.String("error", err.Error()),
		)
		w.metrics.ObserveReload(false)
		return
	}

	g, err := graph.Build(doc)
	if err != nil {
		w.logger.Error("reloaded ontology is invalid, keeping previous one",
			slog.String("path", w.config.Path),
			slog.String("error", err.Error()),
		)
		w.metrics.ObserveReload(false)
		return
	}

	w.handler.Swap(query.NewEngine(g))
	w.metrics.ObserveReload(true)
	w.logger.Info("ontology reloaded",
		slog.String("path", w.config.Path),
		slog.Int("terms", g.Len()),
	)
}

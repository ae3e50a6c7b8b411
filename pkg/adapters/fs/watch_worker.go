package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/flow/pkg/core"
)

const debounceDelay = 50 * time.Millisecond

type watchWorker struct {
	*worker.BaseWorker
	session   *Session
	opts      WatchOptions
	events    chan core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
	reindex   sync.WaitGroup
}

func newWatchWorker(session *Session, opts WatchOptions, events chan core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("journal-watcher"),
		session:    session,
		opts:       opts,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := w.session.filePath(w.session.config.JournalDir)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.opts.Debounce)
	w.session.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	if err := w.StartFunc(runCtx, w.run); err != nil {
		cancel()
		_ = watcher.Close()
		w.session.setWatcherActive(false)
		return err
	}
	return nil
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// reindexOnStart folds edits made while nobody was watching.
func (w *watchWorker) reindexOnStart(ctx context.Context) {
	w.reindex.Add(1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer w.reindex.Done()
		changed, err := w.session.reconcileAll(ctx, w.opts)
		if err != nil {
			w.session.logger().Error("initial reindex failed", "error", err)
			return err
		}
		now := time.Now().Unix()
		for _, id := range changed {
			w.emit(ctx, core.Event{Type: core.EventModify, ID: id, Timestamp: now})
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		w.session.logger().Error("initial reindex panic", "error", err)
	}))
}

// processFilesystemEvent filters journal writes and schedules their
// reconciliation. It reports whether the event was accepted.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	log := w.session.logger()
	log.Debug("event received", "name", event.Name, "op", event.Op.String())

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create):
		eType = core.EventCreate
	case event.Has(fsnotify.Write):
		eType = core.EventModify
	default:
		return false
	}

	rel, err := filepath.Rel(w.session.root, event.Name)
	if err != nil {
		return false
	}
	id := filepath.ToSlash(rel)
	if ok, _ := doublestar.Match(w.opts.Pattern, id); !ok {
		return false
	}

	w.debouncer.add(core.Event{Type: eType, ID: id}, func(e core.Event) {
		changed, err := w.session.reconcile(ctx, w.opts, e.ID)
		if err != nil {
			log.Warn("failed to reconcile journal file", "id", e.ID, "error", err)
			return
		}
		if !changed {
			return
		}
		e.Timestamp = time.Now().Unix()
		w.emit(ctx, e)
	})
	return true
}

// emit delivers an event, giving up when the worker stops.
func (w *watchWorker) emit(ctx context.Context, event core.Event) {
	if ctx.Err() != nil {
		return
	}
	select {
	case w.events <- event:
	case <-ctx.Done():
	}
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	log := w.session.logger()
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if log.Enabled(ctx, slog.LevelDebug) {
				log.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				log.Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.events)
	defer w.session.setWatcherActive(false)
	defer w.watcher.Close()

	if w.opts.Reindex {
		w.reindexOnStart(ctx)
	}

	err = w.mainEventLoop(ctx)
	w.cancel()

	if !w.debouncer.stopAndWait(5 * time.Second) {
		log.Warn("watcher stopped with reconciliations still running")
	}
	w.reindex.Wait()
	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.session.logger().Error("fsnotify error", "error", wErr)
		}
	}
}

package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/pygolf/internal/types"
)

// settle groups the writes an editor makes when saving into one event.
const settle = 100 * time.Millisecond

// ReportFunc receives the outcome of each file shortened in watch mode.
type ReportFunc func(filename string, res *tt.Result, err error)

type watchState struct {
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
	report  ReportFunc
}

// StartWatching shortens every .py file under dirs each time it is
// written, storing the output next to it under the output suffix.
func (e *Engine) StartWatching(ctx context.Context, dirs []string, report ReportFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.watch != nil {
		return errors.New("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &watchState{
		watcher: watcher,
		cancel:  cancel,
		done:    make(chan struct{}),
		report:  report,
	}
	e.watch = w
	go e.watchLoop(ctx, w)
	return nil
}

// StopWatching stops the watcher and waits for the pending event to finish.
func (e *Engine) StopWatching() error {
	e.mu.Lock()
	w := e.watch
	e.watch = nil
	e.mu.Unlock()

	if w == nil {
		return errors.New("not watching")
	}
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

func (e *Engine) watchLoop(ctx context.Context, w *watchState) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(ctx, w, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			e.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(ctx context.Context, w *watchState, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !e.watched(event.Name) {
		return
	}
	time.Sleep(settle)

	res, err := e.ShortenFile(ctx, event.Name)
	if err == nil {
		err = os.WriteFile(e.OutputPath(event.Name), []byte(res.Output), 0o644)
	}
	if w.report != nil {
		w.report(event.Name, res, err)
	}
}

// watched reports whether a written file should be shortened. Outputs of
// the watcher itself are skipped so they do not trigger again.
func (e *Engine) watched(filename string) bool {
	return filepath.Ext(filename) == ".py" && !strings.HasSuffix(filename, e.outSuffix)
}

// OutputPath returns where watch mode stores the shortened filename.
func (e *Engine) OutputPath(filename string) string {
	return strings.TrimSuffix(filename, ".py") + e.outSuffix
}

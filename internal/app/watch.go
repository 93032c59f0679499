package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dshills/automata/internal/watcher"
)

// watch runs the suite, then re-runs it once per batch of changes to the
// suite file or the definitions it names. Load and run failures are
// logged and the loop keeps going; it ends when ctx is done.
func (app *Application) watch(ctx context.Context) error {
	if app.opts.SuitePath == "" && app.opts.Definition == "" {
		return ErrNothingToWatch
	}
	log := app.logger.WithComponent("watch")

	inner, err := watcher.NewFSNotifyWatcher()
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	w := watcher.NewBatcher(inner, app.config.Watch.Debounce.Std())
	defer w.Close()

	watched := make(map[string]bool)
	syncWatches := func(files []string) {
		want := make(map[string]bool, len(files))
		for _, f := range files {
			want[f] = true
			if watched[f] {
				continue
			}
			if err := w.Watch(f); err != nil && !errors.Is(err, watcher.ErrAlreadyWatching) {
				log.Warn("cannot watch %s: %v", f, err)
				continue
			}
			watched[f] = true
		}
		for f := range watched {
			if !want[f] {
				_ = w.Unwatch(f)
				delete(watched, f)
			}
		}
	}

	var last error
	rerun := func() {
		s, err := app.runOnce(ctx)
		app.logRunError(err)
		last = err
		if s != nil {
			syncWatches(s.Files())
		} else {
			// Keep watching what was requested so a fix triggers a run.
			syncWatches(app.requestedFiles())
		}
	}

	rerun()
	log.Info("watching %d files", len(watched))

	for {
		select {
		case <-ctx.Done():
			if errors.Is(last, ErrMismatch) {
				return last
			}
			return nil
		case batch, ok := <-w.Batches():
			if !ok {
				return last
			}
			log.Debug("%d changed: %s", len(batch.Paths), strings.Join(batch.Paths, ", "))
			rerun()
		case err, ok := <-w.Errors():
			if !ok {
				return last
			}
			log.Warn("%v", err)
		}
	}
}

// requestedFiles lists the files named directly by the options.
func (app *Application) requestedFiles() []string {
	var files []string
	if app.opts.SuitePath != "" {
		files = append(files, app.opts.SuitePath)
	}
	if app.opts.Definition != "" {
		files = append(files, app.opts.Definition)
	}
	return files
}

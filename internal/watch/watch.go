// Package watch turns the capture area into a live intake: file events feed
// new or changed notes straight into the single-note workflow. It is the
// resident replacement for invoking the process command from a scheduler.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/models"
	"github.com/mvantol/ansuz/internal/workflow"
)

// debounceDelay batches rapid-fire events for the same note: editors tend to
// write a file several times in quick succession.
const debounceDelay = 500 * time.Millisecond

// NoteCallback is called after each watcher-driven processing run.
type NoteCallback func(result *models.ProcessResult)

// Watch starts an fsnotify watcher on the capture area and processes note
// events with opts until ctx is cancelled. New subdirectories created at
// runtime are added to the watch list. It calls cb (if non-nil) after each run.
func Watch(ctx context.Context, wf *workflow.Workflow, l *layout.Layout, opts workflow.Options, logger *slog.Logger, cb NoteCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	captureDir := l.CaptureDir()
	if err := addDirsRecursive(w, captureDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("capture", captureDir))

	pending := map[string]struct{}{}
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounceDelay)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounceDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for rel := range pending {
				res, err := wf.Process(ctx, rel, opts)
				if err != nil {
					logger.Warn("watcher: process failed",
						slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: processed",
					slog.String("path", rel), slog.Bool("status_updated", res.StatusUpdated))
				if cb != nil {
					cb(res)
				}
			}
			pending = map[string]struct{}{}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New directories join the watch list.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name), slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			rel, relErr := filepath.Rel(l.Root, ev.Name)
			if relErr != nil {
				continue
			}
			pending[filepath.ToSlash(rel)] = struct{}{}
			scheduleFlush()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

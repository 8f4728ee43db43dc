package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the config file whenever it changes on disk and hands each
// successfully validated Config to apply. Edits that fail to load or
// validate are rejected with an error log and the running config stays in
// effect. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, apply func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}
	slog.Info("config: watching", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				reload(path, apply)
				// An atomic save replaces the inode, which silently ends the
				// old watch; re-adding the path picks up the new file.
				_ = w.Add(path)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watch error", "err", err)
		}
	}
}

// reload parses and validates the file at path, applying it only when the
// whole pipeline succeeds. A half-saved or invalid file is not applied.
func reload(path string, apply func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: rejected edited file", "path", path, "err", err)
		return
	}
	slog.Info("config: applied edited file", "path", path)
	apply(cfg)
}

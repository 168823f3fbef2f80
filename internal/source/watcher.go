package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch starts an fsnotify watcher on the notes root and sends the relative
// path of each created or modified note file on events until ctx is
// cancelled. New directories created at runtime are added to the watch list.
// Deletes and renames are ignored; the agent's rescan reconciles those.
func Watch(ctx context.Context, root string, logger zerolog.Logger, events chan<- string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info().Str("root", root).Msg("watcher started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn().Str("path", ev.Name).Err(addErr).Msg("watch new dir failed")
					}
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !noteFile(ev.Name) {
				continue
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}

			select {
			case events <- rel:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// addDirsRecursive adds root and every subdirectory to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

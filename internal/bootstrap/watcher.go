package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// StoreWatcher calls OnChange after the record store file (or its journal)
// has been written, renamed or removed. Bursts of events within Debounce are
// collapsed into one call.
type StoreWatcher struct {
	Path     string
	Debounce time.Duration
	OnChange func()
}

// Watch blocks until ctx is cancelled. The parent directory is watched so the
// file may be created, replaced or deleted while the watcher runs.
func (w *StoreWatcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.Path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	interval := w.Debounce
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	log.Info().Str("path", w.Path).Dur("debounce", interval).Msg("record store watcher started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("record store watcher stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("record store changed")

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(interval, func() {
				if ctx.Err() != nil {
					return
				}
				w.OnChange()
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Error().Err(err).Msg("record store watcher error")
		}
	}
}

func (w *StoreWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(w.Path)
	name := filepath.Base(ev.Name)
	// -shm is rewritten by readers too; it never signals new data.
	return name == base || name == base+"-wal" || name == base+"-journal"
}

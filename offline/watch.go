package offline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/reelmark-cli/reelmark/log"
)

// WatchDebounce is how long the index file must stay quiet before it is reloaded.
var WatchDebounce = 200 * time.Millisecond

// Watch reloads the index at path after it changes and passes every successful load to fn.
// The parent directory is watched so that atomic replacements are seen too.
// fn runs on the watcher goroutine. Watch returns once watching has started; it stops with ctx.
func Watch(ctx context.Context, path string, fn func(*Index)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch download index: %w", err)
	}

	go watchLoop(ctx, watcher, target, fn)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, fn func(*Index)) {
	defer watcher.Close()

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(WatchDebounce)
			reload = timer.C

		case <-reload:
			reload = nil
			idx, err := Load(target)
			if err != nil {
				log.Warnf("offline: reload %s: %v", target, err)
				continue
			}
			log.Infof("offline: reloaded %s (%d entries)", target, idx.Len())
			fn(idx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("offline: watcher error: %v", err)
		}
	}
}

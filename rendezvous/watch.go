package rendezvous

import (
	"context"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// watch emits a notification whenever the directory changes. notifications are
// coalesced, a slow consumer observes at most one pending event. when the
// directory cannot be watched (e.g. network filesystems) the returned channel
// never fires and callers fall back to polling.
func watch(ctx context.Context, dir string) <-chan struct{} {
	var (
		err   error
		w     *fsnotify.Watcher
		wake  = make(chan struct{}, 1)
		limit = rate.NewLimiter(rate.Every(10*time.Second), 1)
	)

	if w, err = fsnotify.NewWatcher(); err != nil {
		log.Println(errors.Wrap(err, "directory watch disabled, polling only"))
		return wake
	}

	if err = w.Add(dir); err != nil {
		log.Println(errors.Wrapf(err, "directory watch disabled, polling only: %s", dir))
		w.Close()
		return wake
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-w.Events:
				if !ok {
					return
				}

				if evt.Op == fsnotify.Chmod {
					continue
				}

				select {
				case wake <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}

				if limit.Allow() {
					log.Println("watch error", err)
				}
			}
		}
	}()

	return wake
}

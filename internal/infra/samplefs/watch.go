package samplefs

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/logger"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Watcher reports changes below a directory tree using fsnotify. Bursts of
// events are coalesced into one callback.
type Watcher struct {
	Debounce time.Duration
}

func NewWatcher() *Watcher {
	return &Watcher{Debounce: 500 * time.Millisecond}
}

var _ ports.DirWatcher = (*Watcher)(nil)

func (w *Watcher) Watch(ctx context.Context, dir string, onChange func() error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return &domain.OpError{Op: "samplefs.watch", Kind: domain.KindExecution, Path: dir, Err: err}
	}
	defer fw.Close()

	if err := addTree(fw, dir); err != nil {
		return &domain.OpError{Op: "samplefs.watch", Kind: domain.KindNotFound, Path: dir, Err: err}
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			logger.L().Debug("samples.watch.event", "path", ev.Name, "op", ev.Op.String())
			// fsnotify is not recursive: follow new subdirectories.
			if ev.Has(fsnotify.Create) {
				_ = addTree(fw, ev.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := onChange(); err != nil {
				return err
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.L().Warn("samples.watch.error", "error", err)
		}
	}
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(p)
		}
		return nil
	})
}

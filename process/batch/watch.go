package batch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settle is how long a new file must stay quiet before it is processed.
const settle = 300 * time.Millisecond

// Watch processes photos created in the input directory until ctx is
// done. Events for a file are debounced so half-written uploads are not
// picked up. onOutcome, when set, is called for every processed file.
func (r *Runner) Watch(ctx context.Context, onOutcome func(Outcome)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(r.opts.Dir); err != nil {
		return err
	}
	r.log.Info("watching", zap.String("dir", r.opts.Dir))

	fileCh := make(chan string, 256)
	done := make(chan struct{})
	for i := 0; i < r.opts.Workers; i++ {
		go func() {
			for name := range fileCh {
				o := r.ProcessFile(ctx, name)
				if onOutcome != nil {
					onOutcome(o)
				}
			}
			done <- struct{}{}
		}()
	}
	defer func() {
		close(fileCh)
		for i := 0; i < r.opts.Workers; i++ {
			<-done
		}
	}()

	pending := map[string]time.Time{}
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if filepath.Dir(ev.Name) != filepath.Clean(r.opts.Dir) || !IsSupportedExt(name) {
				continue
			}
			pending[name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > settle {
					delete(pending, name)
					select {
					case fileCh <- name:
					case <-ctx.Done():
						return nil
					}
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watch error", zap.Error(err))
		}
	}
}

package load

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/reoring/docbind"
)

// DefaultDebounce is the quiet period after the last file event before a
// reload runs.
const DefaultDebounce = 100 * time.Millisecond

// Reload is the outcome of one load of the watched file.
type Reload[T any] struct {
	ID    string // Unique per reload, for correlating logs.
	Path  string
	Value T
	OK    bool  // Mapping succeeded.
	Err   error // Read, parse or schema failure; Value is zero.
	At    time.Time
}

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Logger   *slog.Logger    // nil means slog.Default().
	Debounce time.Duration   // <= 0 means DefaultDebounce.
	Map      docbind.Options // Passed to every mapping run.
	// Format overrides the format derived from the file extension.
	// FormatAuto keeps FormatOf(path).
	Format Format
}

// Watcher reloads one file whenever it changes. The parent directory is
// watched so editors that save by rename are handled.
type Watcher[T any] struct {
	path string
	opt  WatchOptions
	log  *slog.Logger
}

// NewWatcher returns a watcher for path. When several options are passed,
// the last wins.
func NewWatcher[T any](path string, opts ...WatchOptions) *Watcher[T] {
	var opt WatchOptions
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.Debounce <= 0 {
		opt.Debounce = DefaultDebounce
	}
	if opt.Format == FormatAuto {
		opt.Format = FormatOf(path)
	}
	lg := opt.Logger
	if lg == nil {
		lg = slog.Default()
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Watcher[T]{path: filepath.Clean(path), opt: opt, log: lg.With(slog.String("path", path))}
}

// Run loads the file once, then again after every change, passing each
// result to fn on the calling goroutine. It returns nil when ctx is
// cancelled and an error only if the watch cannot be established.
func (w *Watcher[T]) Run(ctx context.Context, fn func(Reload[T])) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("load: watch %s: %w", w.path, err)
	}
	defer func() {
		_ = fw.Close()
	}()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("load: watch %s: %w", w.path, err)
	}

	fn(w.load())

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("file event", slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.opt.Debounce)
			} else {
				timer.Reset(w.opt.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			fn(w.load())
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", slog.String("err", err.Error()))
		}
	}
}

func (w *Watcher[T]) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

func (w *Watcher[T]) load() Reload[T] {
	r := Reload[T]{ID: uuid.NewString(), Path: w.path, At: time.Now()}
	if data, err := os.ReadFile(w.path); err != nil {
		r.Err = fmt.Errorf("load: %w", err)
	} else {
		r.Value, r.OK, r.Err = Bytes[T](data, w.opt.Format, w.opt.Map)
	}
	lg := w.log.With(slog.String("reload_id", r.ID))
	switch {
	case r.Err != nil:
		lg.Error("reload failed", slog.String("err", r.Err.Error()))
	case !r.OK:
		lg.Warn("reloaded with mapping errors")
	default:
		lg.Info("reloaded")
	}
	return r
}

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"basepatch/rewrite"
)

// settleLimit caps how long a file that still lacks its closing </html> is
// held back. Pages that never get one are rewritten once it passes.
const settleLimit = 2 * time.Second

// watchState is owned by the Watch loop goroutine; timers only hand paths
// back to it through due.
type watchState struct {
	w       *fsnotify.Watcher
	rw      *rewrite.Rewriter
	opts    Options
	pending map[string]*pendingFile
	due     chan dueFile
	done    chan struct{}
}

type pendingFile struct {
	timer *time.Timer
	gen   uint64
	first time.Time
}

type dueFile struct {
	path string
	gen  uint64
}

// Watch applies the rewrite once, then keeps the tree patched as the site
// generator rewrites it. A changed .html file is rewritten once it has been
// quiet for cfg.Settle and looks complete; a structural change directly
// under the root rediscovers the known roots and reschedules every file
// when the set moved.
//
// It blocks until ctx is cancelled (returning nil) or a fatal error occurs.
// The tool's own writes trigger one more event per file, which finds the
// content already settled and writes nothing.
func (r *Runner) Watch(ctx context.Context, opts Options) error {
	sum, err := r.Run(ctx, opts)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	s := &watchState{
		w:       w,
		rw:      rewrite.New(sum.Roots, r.cfg.BasePath, r.cfg.AdminPaths),
		opts:    opts,
		pending: map[string]*pendingFile{},
		due:     make(chan dueFile),
		done:    make(chan struct{}),
	}
	defer s.stopTimers()
	defer close(s.done)

	if err := r.watchRecursive(w, r.cfg.Root); err != nil {
		return fmt.Errorf("watching %q: %w", r.cfg.Root, err)
	}
	r.log.Info("watcher: watching for changes",
		zap.String("root", r.cfg.Root),
		zap.Duration("settle", r.cfg.Settle))
	if opts.Ready != nil {
		opts.Ready()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			r.handleEvent(s, event)
		case d := <-s.due:
			r.settled(s, d)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watcher: error", zap.Error(err))
		}
	}
}

func (s *watchState) stopTimers() {
	for _, p := range s.pending {
		p.timer.Stop()
	}
}

// watchRecursive adds a watch for dir and every non-ignored directory
// beneath it. Hitting the inotify watch limit is logged once and stops the
// walk; directories past that point are only caught by a restart.
func (r *Runner) watchRecursive(w *fsnotify.Watcher, dir string) error {
	top := filepath.Clean(dir)
	return rewrite.WalkTree(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.log.Warn("watcher: skipping", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != top && rewrite.IsIgnored(d.Name(), r.cfg.Ignore) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			if errors.Is(err, syscall.ENOSPC) {
				r.log.Warn("watcher: inotify watch limit reached; raise fs.inotify.max_user_watches for full coverage",
					zap.String("stopped_at", path))
				return filepath.SkipAll
			}
			r.log.Warn("watcher: could not add watch", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

// handleEvent processes one fsnotify event.
func (r *Runner) handleEvent(s *watchState, event fsnotify.Event) {
	rel := r.relPath(event.Name)
	if strings.HasPrefix(rel, "../") || rewrite.IsIgnored(rel, r.cfg.Ignore) {
		return
	}

	structural := event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)

	// New directories get watched right away; their pages may have been
	// written before the watch was in place.
	var newDir bool
	if event.Has(fsnotify.Create) {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
			newDir = true
			if err := r.watchRecursive(s.w, event.Name); err != nil {
				r.log.Warn("watcher: could not watch new dir", zap.String("path", event.Name), zap.Error(err))
			}
		}
	}

	if structural && filepath.Dir(filepath.Clean(event.Name)) == filepath.Clean(r.cfg.Root) {
		fresh, err := r.Rewriter()
		if err != nil {
			r.log.Error("watcher: could not rediscover roots", zap.Error(err))
			return
		}
		if !fresh.Roots().Equal(s.rw.Roots()) {
			r.log.Info("watcher: known roots changed",
				zap.String("old", s.rw.Roots().String()),
				zap.String("new", fresh.Roots().String()))
			s.rw = fresh
			r.scheduleTree(s, r.cfg.Root)
			return
		}
	}

	switch {
	case newDir:
		r.scheduleTree(s, event.Name)
	case strings.HasSuffix(event.Name, ".html") && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)):
		r.schedule(s, event.Name)
	}
}

// scheduleTree schedules every .html file under dir.
func (r *Runner) scheduleTree(s *watchState, dir string) {
	files, err := rewrite.WalkHTML(dir, r.cfg.Ignore)
	if err != nil {
		r.log.Error("watcher: could not walk", zap.String("path", dir), zap.Error(err))
		return
	}
	for _, f := range files {
		r.schedule(s, f)
	}
}

// schedule (re)starts the quiet period of path. Every event pushes the
// rewrite back, so a file is only read once its writer has paused.
func (r *Runner) schedule(s *watchState, path string) {
	p, ok := s.pending[path]
	if !ok {
		p = &pendingFile{first: time.Now()}
		s.pending[path] = p
	}
	r.arm(s, path, p)
}

func (r *Runner) arm(s *watchState, path string, p *pendingFile) {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	d := dueFile{path: path, gen: p.gen}
	p.timer = time.AfterFunc(r.cfg.Settle, func() {
		select {
		case s.due <- d:
		case <-s.done:
		}
	})
}

// settled handles a quiet period that ran out. A timer superseded by a later
// event is ignored. A page still missing its closing </html> is most likely
// half written and waits another period, up to settleLimit.
func (r *Runner) settled(s *watchState, d dueFile) {
	p, ok := s.pending[d.path]
	if !ok || p.gen != d.gen {
		return
	}
	limit := max(settleLimit, 4*r.cfg.Settle)
	if raw, err := os.ReadFile(d.path); err == nil && !looksComplete(raw) && time.Since(p.first) < limit {
		r.log.Debug("watcher: waiting for page to complete", zap.String("file", r.relPath(d.path)))
		r.arm(s, d.path, p)
		return
	}
	delete(s.pending, d.path)
	r.reprocessFile(s.rw, d.path, s.opts)
}

func looksComplete(raw []byte) bool {
	return bytes.Contains(bytes.ToLower(raw), []byte("</html>"))
}

// reprocessFile applies rw to one file. Errors are logged rather than
// returned: one unreadable page must not stop the watch. A file that
// vanished, or changed again while it was being rewritten, is left to the
// events that follow.
func (r *Runner) reprocessFile(rw *rewrite.Rewriter, path string, opts Options) {
	doc, res, _, err := r.processFile(rw, path, opts.DryRun)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return
	case errors.Is(err, ErrChangedOnDisk):
		r.log.Debug("watcher: file changed during rewrite", zap.String("file", r.relPath(path)))
		return
	case err != nil:
		r.log.Error("watcher: could not rewrite", zap.String("file", r.relPath(path)), zap.Error(err))
		return
	}
	if res.Changed {
		r.log.Info("watcher: rewrote", zap.String("file", doc.RelPath))
	}
	if opts.OnResult != nil {
		opts.OnResult(doc, res)
	}
}

// Package runner drives the rewriter over a project tree: it discovers the
// known roots, walks the tree, transforms each document and writes changed
// files back in place.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"basepatch/config"
	"basepatch/models"
	"basepatch/rewrite"
)

// Options tune one pass over the tree.
type Options struct {
	// DryRun transforms in memory and never writes.
	DryRun bool
	// OnResult, when set, is called once per document after it has been
	// transformed (and written, unless DryRun). Calls are serialized.
	OnResult func(doc models.Document, res models.Result)
	// Ready, when set, is called by Watch once the initial pass is done and
	// the tree is being watched.
	Ready func()
}

// Runner applies the rewriter to cfg.Root.
type Runner struct {
	cfg *config.Config
	log *zap.Logger
}

// New returns a Runner. A nil logger discards all output.
func New(cfg *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log}
}

// Rewriter discovers the current known roots and returns a rewriter bound
// to them.
func (r *Runner) Rewriter() (*rewrite.Rewriter, error) {
	roots, err := rewrite.DiscoverRoots(r.cfg.Root, r.cfg.Ignore)
	if err != nil {
		return nil, err
	}
	return rewrite.New(roots, r.cfg.BasePath, r.cfg.AdminPaths), nil
}

// Run processes every .html file under the root once. The first read or
// write error aborts the run and is returned.
func (r *Runner) Run(ctx context.Context, opts Options) (*models.Summary, error) {
	rw, err := r.Rewriter()
	if err != nil {
		return nil, err
	}
	r.logStartup(rw.Roots(), opts)

	files, err := rewrite.WalkHTML(r.cfg.Root, r.cfg.Ignore)
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", r.cfg.Root, err)
	}

	sum, err := r.processAll(ctx, rw, files, opts)
	if err != nil {
		return nil, err
	}
	r.log.Info("rewrite: done",
		zap.Int("files", sum.Files),
		zap.Int("changed", sum.Changed),
		zap.Int("warnings", sum.Warnings),
		zap.String("written", humanize.Bytes(uint64(sum.BytesWritten))),
		zap.Bool("dry_run", opts.DryRun),
	)
	return sum, nil
}

// processAll runs processFile over files, sequentially when Workers is 1
// and on a bounded errgroup otherwise.
func (r *Runner) processAll(ctx context.Context, rw *rewrite.Rewriter, files []string, opts Options) (*models.Summary, error) {
	sum := &models.Summary{Roots: rw.Roots()}
	var mu sync.Mutex

	record := func(doc models.Document, res models.Result, written int64) {
		mu.Lock()
		defer mu.Unlock()
		sum.Files++
		sum.Warnings += len(res.Warnings)
		if res.Changed {
			sum.Changed++
		}
		sum.BytesWritten += written
		if opts.OnResult != nil {
			opts.OnResult(doc, res)
		}
	}

	one := func(path string) error {
		doc, res, written, err := r.processFile(rw, path, opts.DryRun)
		if err != nil {
			return err
		}
		record(doc, res, written)
		return nil
	}

	if r.cfg.Workers <= 1 {
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := one(f); err != nil {
				return nil, err
			}
		}
		return sum, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return one(f)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sum, nil
}

// processFile reads, transforms and (unless dryRun) writes back one file.
// Unchanged content is never written, so mtimes of settled files survive.
func (r *Runner) processFile(rw *rewrite.Rewriter, path string, dryRun bool) (models.Document, models.Result, int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Document{}, models.Result{}, 0, fmt.Errorf("reading %q: %w", path, err)
	}

	rel := r.relPath(path)
	doc := models.Document{
		Path:    path,
		RelPath: rel,
		Kind:    rw.Classify(rel),
		Content: string(raw),
	}
	res := rw.Apply(doc)

	for _, w := range res.Warnings {
		r.log.Warn("rewrite: "+w, zap.String("file", rel))
	}

	var written int64
	if res.Changed && !dryRun {
		if err := writeFileAtomic(path, raw, []byte(res.Content)); err != nil {
			return doc, res, 0, err
		}
		written = int64(len(res.Content))
	}
	r.log.Debug("rewrite: processed",
		zap.String("file", rel),
		zap.Stringer("kind", doc.Kind),
		zap.Bool("changed", res.Changed),
	)
	return doc, res, written, nil
}

// relPath returns path relative to the root, slash-separated. A path that
// cannot be made relative is returned as-is.
func (r *Runner) relPath(path string) string {
	rel, err := filepath.Rel(r.cfg.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// logStartup prints a summary of the active configuration.
func (r *Runner) logStartup(roots models.KnownRoots, opts Options) {
	s := r.log.Sugar()
	sep := "-------------------------------------------"
	s.Info(sep)
	s.Infof("  %-14s %s", "Root:", r.cfg.Root)
	s.Infof("  %-14s %s", "Known roots:", orNone(roots.String()))
	if r.cfg.BasePath != "" {
		s.Infof("  %-14s %s", "Base path:", r.cfg.BasePath)
	} else {
		s.Infof("  %-14s %s", "Base path:", "auto (keep existing)")
	}
	s.Infof("  %-14s %d", "Workers:", r.cfg.Workers)
	s.Infof("  %-14s %s", "Mode:", map[bool]string{true: "dry run", false: "write"}[opts.DryRun])
	s.Info(sep)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"basepatch/inspect"
	"basepatch/models"
	"basepatch/rewrite"
)

// ErrChecksFailed is returned by the check command when a file would change
// or a document shows a structural problem.
var ErrChecksFailed = errors.New("check failed")

// Problem is a defect in what a document looks like after the rewrite.
type Problem struct {
	File    string
	Message string
}

// CheckReport is the outcome of a dry run.
type CheckReport struct {
	Summary *models.Summary
	// Pending lists files a real run would rewrite, in walk order.
	Pending  []string
	Problems []Problem
}

// OK reports whether the tree is fully patched and problem free.
func (c *CheckReport) OK() bool {
	return len(c.Pending) == 0 && len(c.Problems) == 0
}

// Check runs the pipeline without writing. With showDiff, a unified diff of
// every pending file is written to out.
func (r *Runner) Check(ctx context.Context, out io.Writer, showDiff bool) (*CheckReport, error) {
	rep := &CheckReport{}
	d := newDiffer(r.cfg, out)
	var diffErr error

	sum, err := r.Run(ctx, Options{
		DryRun: true,
		OnResult: func(doc models.Document, res models.Result) {
			if res.Changed {
				rep.Pending = append(rep.Pending, doc.RelPath)
				if showDiff && diffErr == nil {
					diffErr = d.write(out, doc.RelPath, doc.Content, res.Content)
				}
			}
			for _, msg := range VerifyDocument(doc.Kind, res.Content) {
				rep.Problems = append(rep.Problems, Problem{File: doc.RelPath, Message: msg})
			}
		},
	})
	if err != nil {
		return nil, err
	}
	if diffErr != nil {
		return nil, diffErr
	}
	rep.Summary = sum

	// Parallel runs finish in any order.
	sort.Strings(rep.Pending)
	sort.SliceStable(rep.Problems, func(i, j int) bool { return rep.Problems[i].File < rep.Problems[j].File })

	for _, f := range rep.Pending {
		r.log.Info("check: would rewrite", zap.String("file", f))
	}
	for _, p := range rep.Problems {
		r.log.Warn("check: "+p.Message, zap.String("file", p.File))
	}
	return rep, nil
}

// VerifyDocument lists what is wrong with content as the final form of a
// document of the given kind: the root attributes must each occur exactly
// once on <html>. Pages that load the kind's bundle must carry its
// bootstrap, and such site pages the footer rewriter too. Pages that never
// referenced the bundle (a hand-written 404, say) are not the rewriter's to
// patch and only get the attribute check.
func VerifyDocument(kind models.DocumentKind, content string) []string {
	var problems []string
	rep, err := inspect.Inspect(content)
	if err != nil {
		return append(problems, err.Error())
	}
	if !rep.HasRoot {
		problems = append(problems, "no <html> root element")
	} else {
		for _, attr := range []string{rewrite.AttrBasePath, rewrite.AttrKnownRoots} {
			if _, n := rep.RootAttr(attr); n != 1 {
				problems = append(problems, fmt.Sprintf("root element carries %s %d times", attr, n))
			}
		}
	}

	patched := rewrite.HasBootstrap(content, kind)
	if !patched && rewrite.LoadsBundle(content, kind) {
		problems = append(problems, fmt.Sprintf("%s bootstrap missing: bundle loaded but head fragment not matched", kind))
	}
	owned := patched || rewrite.LoadsBundle(content, kind)
	if kind == models.KindSite && owned && !rewrite.HasLinkRewriter(content) {
		problems = append(problems, "footer link rewriter missing")
	}
	return problems
}

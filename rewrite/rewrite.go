package rewrite

import (
	"basepatch/models"
)

// Rewriter applies the whole per-document pipeline with one run's settings.
// It holds no mutable state and is safe for concurrent use.
type Rewriter struct {
	roots      models.KnownRoots
	basePath   string
	adminPaths []string
}

// New returns a Rewriter for one run. basePath may be empty to keep or
// insert "auto"; a nil adminPaths selects DefaultAdminPaths.
func New(roots models.KnownRoots, basePath string, adminPaths []string) *Rewriter {
	if adminPaths == nil {
		adminPaths = DefaultAdminPaths
	}
	return &Rewriter{roots: roots, basePath: basePath, adminPaths: adminPaths}
}

// Roots returns the known roots this Rewriter stamps on documents.
func (rw *Rewriter) Roots() models.KnownRoots {
	return rw.roots
}

// Classify returns the kind of the document at relPath.
func (rw *Rewriter) Classify(relPath string) models.DocumentKind {
	return Classify(relPath, rw.adminPaths)
}

// Apply transforms one document: annotate, inject the bootstrap for its
// kind, and for site documents add the footer link rewriter. Applying it
// to its own output yields the same output.
func (rw *Rewriter) Apply(doc models.Document) models.Result {
	out := Annotate(doc.Content, rw.roots, rw.basePath)
	out = InjectBootstrap(out, doc.Kind)

	var warnings []string
	if doc.Kind == models.KindSite {
		out, warnings = InjectLinkRewriter(out)
	}

	return models.Result{
		Content:  out,
		Changed:  out != doc.Content,
		Warnings: warnings,
	}
}

// Package resolve models, in Go, what the injected scripts do in the
// browser: which base a page settles on for a given URL, and how the footer
// rewriter changes root-relative links and form actions under that base.
package resolve

import (
	"strings"

	"basepatch/models"
)

// ResolveBase returns the base the head bootstrap publishes for a page
// whose data-base-path is attr, served at pathname.
//
// A non-empty attr other than "auto" wins outright. Otherwise the first
// non-empty segment of pathname is the deployment prefix unless it is one
// of roots. The result always ends with a slash.
func ResolveBase(attr string, roots models.KnownRoots, pathname string) string {
	base := "/"
	if attr != "" && attr != "auto" {
		base = attr
	} else if segments := splitSegments(pathname); len(segments) > 0 && !roots.Contains(segments[0]) {
		base = "/" + segments[0] + "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func splitSegments(pathname string) []string {
	var segments []string
	for _, s := range strings.Split(pathname, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// RewriteHref returns the href the footer script assigns to an anchor, and
// whether it changed it.
func RewriteHref(base, href string) (string, bool) {
	return rewrite(base, href, true)
}

// RewriteAction is RewriteHref for form actions, which have no fragment
// special case.
func RewriteAction(base, action string) (string, bool) {
	return rewrite(base, action, false)
}

func rewrite(base, ref string, fragments bool) (string, bool) {
	if base == "/" || !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return ref, false
	}
	switch {
	case ref == "/":
		return base, true
	case fragments && ref[1] == '#':
		return base + ref[1:], true
	}
	return strings.TrimRight(base, "/") + ref, true
}

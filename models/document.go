// Package models defines data structures shared by the rewriter, the runner
// and the command-line front end.
package models

import "strings"

// DocumentKind tells the rewriter which bootstrap variant a document gets.
type DocumentKind int

const (
	// KindSite is an ordinary generated page loading the shared stylesheet
	// and bundle.
	KindSite DocumentKind = iota
	// KindAdmin is the single-page admin entry with its own module script.
	KindAdmin
)

func (k DocumentKind) String() string {
	if k == KindAdmin {
		return "admin"
	}
	return "site"
}

// KnownRoots is the sorted set of first URL segments that belong to the
// un-prefixed site. It is computed once per run and never mutated.
type KnownRoots []string

// String serializes the set the way it is stored in data-known-roots.
func (r KnownRoots) String() string {
	return strings.Join(r, ",")
}

// Contains reports whether segment is a known root.
func (r KnownRoots) Contains(segment string) bool {
	for _, name := range r {
		if name == segment {
			return true
		}
	}
	return false
}

// Equal reports whether two sets hold the same names in the same order.
func (r KnownRoots) Equal(other KnownRoots) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// ParseKnownRoots splits a data-known-roots value back into a set.
// An empty value yields an empty set.
func ParseKnownRoots(value string) KnownRoots {
	if value == "" {
		return KnownRoots{}
	}
	return KnownRoots(strings.Split(value, ","))
}

// Document is one HTML file of the tree, held fully in memory.
type Document struct {
	// Path is the filesystem path the document was read from.
	Path string
	// RelPath is Path relative to the project root, slash-separated.
	RelPath string
	Kind    DocumentKind
	Content string
}

// Result is the outcome of transforming one document.
type Result struct {
	Content string
	// Changed is false when Content equals the input byte for byte.
	Changed bool
	// Warnings are non-fatal problems found while transforming.
	Warnings []string
}

// Summary aggregates a whole run.
type Summary struct {
	Roots        KnownRoots
	Files        int
	Changed      int
	Warnings     int
	BytesWritten int64
}

// Package rewrite turns a tree of pre-built HTML pages into pages that find
// their own deployment prefix at load time. Every function here is a pure
// function of file content except the directory listings in this file and
// walk.go.
package rewrite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"basepatch/models"
)

// entryIsDir reports whether a directory entry is a directory, following
// symlinks. os.ReadDir uses os.Lstat semantics, so DirEntry.IsDir() is false
// for a symlink that points at a directory.
func entryIsDir(parent string, d os.DirEntry) bool {
	if d.Type()&os.ModeSymlink == 0 {
		return d.IsDir()
	}
	fi, err := os.Stat(filepath.Join(parent, d.Name()))
	return err == nil && fi.IsDir()
}

// DiscoverRoots lists the top-level names of root that are legitimate first
// URL segments of the un-prefixed site: directories and top-level .html
// files. Hidden entries and ignored directories are left out. The result is
// sorted so every run serializes it identically.
func DiscoverRoots(root string, ignore []string) (models.KnownRoots, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing root %q: %w", root, err)
	}

	skip := ignoreSet(ignore)
	roots := make(models.KnownRoots, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := e.Name()
		if skip[name] || strings.HasPrefix(name, ".") || seen[name] {
			continue
		}
		if entryIsDir(root, e) || strings.HasSuffix(name, ".html") {
			roots = append(roots, name)
			seen[name] = true
		}
	}
	sort.Strings(roots)
	return roots, nil
}

func ignoreSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

package rewrite

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// WalkTree is filepath.WalkDir that follows dir itself when it is a
// symlink, so a linked build directory (public -> build) is walked like a
// real one. Paths handed to fn stay under dir as given. Links below dir are
// not followed.
func WalkTree(dir string, fn fs.WalkDirFunc) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	return filepath.WalkDir(real, func(path string, d fs.DirEntry, err error) error {
		if rel, relErr := filepath.Rel(real, path); relErr == nil {
			path = filepath.Join(dir, rel)
		}
		return fn(path, d, err)
	})
}

// WalkHTML returns every .html file beneath dir, depth-first in lexical
// order. Ignored directories are skipped at every depth. Symlinked
// directories below dir are not followed, so a link cycle cannot make the
// walk loop and no file is listed twice.
//
// Any error reading the tree is returned; a partial listing is never
// returned.
func WalkHTML(dir string, ignore []string) ([]string, error) {
	skip := ignoreSet(ignore)
	top := filepath.Clean(dir)
	var files []string
	err := WalkTree(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != top && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), ".html") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// IsIgnored reports whether any element of rel (a path relative to the
// project root) is an ignored directory name.
func IsIgnored(rel string, ignore []string) bool {
	skip := ignoreSet(ignore)
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if skip[part] {
			return true
		}
	}
	return false
}

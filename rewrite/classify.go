package rewrite

import (
	"path/filepath"

	"basepatch/models"
)

// DefaultAdminPaths are the two places the admin entry page lives: the
// built tree and the source tree one level down.
var DefaultAdminPaths = []string{"admin/index.html", "src/admin/index.html"}

// Classify returns KindAdmin when relPath is one of adminPaths and KindSite
// otherwise. Both sides are compared slash-separated and cleaned.
func Classify(relPath string, adminPaths []string) models.DocumentKind {
	rel := filepath.ToSlash(filepath.Clean(relPath))
	for _, p := range adminPaths {
		if rel == filepath.ToSlash(filepath.Clean(p)) {
			return models.KindAdmin
		}
	}
	return models.KindSite
}

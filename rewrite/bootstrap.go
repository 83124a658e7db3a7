package rewrite

import (
	"strings"

	"basepatch/models"
)

// InjectBootstrap swaps the head fragment of the given kind for its
// bootstrap script. Content without the fragment is returned unchanged:
// either it was already patched or it is markup this tool does not own.
func InjectBootstrap(content string, kind models.DocumentKind) string {
	fragment, bootstrap := SiteHeadFragment, SiteBootstrap
	if kind == models.KindAdmin {
		fragment, bootstrap = AdminHeadFragment, AdminBootstrap
	}
	return strings.Replace(content, fragment, bootstrap, 1)
}

// HasBootstrap reports whether content already carries the bootstrap of
// the given kind.
func HasBootstrap(content string, kind models.DocumentKind) bool {
	if kind == models.KindAdmin {
		return strings.Contains(content, AdminBootstrap)
	}
	return strings.Contains(content, SiteBootstrap)
}

// Script sources the head fragments load from the un-prefixed path. The
// bootstraps build them from the base instead, so they never contain these.
const (
	siteBundleSrc  = "/assets/js/main.bundle.js"
	adminBundleSrc = "/admin/preview-templates/index.js"
)

// LoadsBundle reports whether content still loads the bundle of the given
// kind from the un-prefixed path. Together with !HasBootstrap it marks a
// page whose head fragment drifted from the exact bytes matched above.
func LoadsBundle(content string, kind models.DocumentKind) bool {
	if kind == models.KindAdmin {
		return strings.Contains(content, adminBundleSrc)
	}
	return strings.Contains(content, siteBundleSrc)
}

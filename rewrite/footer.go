package rewrite

import "strings"

// MissingClosingMarkers is the warning emitted when a site document has no
// verbatim </body></html> to anchor the footer script on.
const MissingClosingMarkers = "no closing tags"

// InjectLinkRewriter appends LinkRewriter before the closing markers,
// once. A legacy footer is upgraded in place rather than duplicated.
// When the markers are absent the content is returned unchanged together
// with a warning; the caller decides how loudly to report it.
func InjectLinkRewriter(content string) (string, []string) {
	if strings.Contains(content, LinkRewriter) {
		return content, nil
	}
	if strings.Contains(content, legacyLinkRewriter) {
		return strings.Replace(content, legacyLinkRewriter, LinkRewriter, 1), nil
	}

	var warnings []string
	if !strings.Contains(content, ClosingMarkers) {
		warnings = append(warnings, MissingClosingMarkers)
	}
	return strings.Replace(content, ClosingMarkers, LinkRewriter+ClosingMarkers, 1), warnings
}

// HasLinkRewriter reports whether content carries the current footer.
func HasLinkRewriter(content string) bool {
	return strings.Contains(content, LinkRewriter)
}

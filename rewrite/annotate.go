package rewrite

import (
	"html"
	"regexp"
	"strings"

	"basepatch/models"
)

const (
	// AttrBasePath holds "auto" or an explicit deployment prefix.
	AttrBasePath = "data-base-path"
	// AttrKnownRoots holds the comma-joined known roots.
	AttrKnownRoots = "data-known-roots"
	// AutoBasePath asks the bootstrap to work the prefix out from the URL.
	AutoBasePath = "auto"
)

var (
	basePathAttr   = attrPattern(AttrBasePath)
	knownRootsAttr = attrPattern(AttrKnownRoots)
)

func attrPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(name) + `="[^"]*"`)
}

// Annotate stamps the root element with the base path and known roots.
//
// An empty basePath keeps whatever data-base-path the document already
// carries and inserts "auto" when it has none; a non-empty basePath always
// overwrites. The known roots are always overwritten with roots.
//
// Matching is content-wide: the first data-* assignment anywhere in the
// document is updated, whichever element carries it.
func Annotate(content string, roots models.KnownRoots, basePath string) string {
	if basePath == "" {
		content = insertAttribute(content, basePathAttr, AttrBasePath, AutoBasePath)
	} else {
		content = setAttribute(content, basePathAttr, AttrBasePath, basePath)
	}
	return setAttribute(content, knownRootsAttr, AttrKnownRoots, roots.String())
}

// setAttribute replaces the value of the first existing assignment, or
// inserts one after the <html tag name when there is none.
func setAttribute(content string, re *regexp.Regexp, name, value string) string {
	assignment := name + `="` + html.EscapeString(value) + `"`
	if loc := re.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + assignment + content[loc[1]:]
	}
	return strings.Replace(content, "<html", "<html "+assignment, 1)
}

// insertAttribute adds the attribute only when no assignment exists yet.
func insertAttribute(content string, re *regexp.Regexp, name, value string) string {
	if re.MatchString(content) {
		return content
	}
	return setAttribute(content, re, name, value)
}

package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectRootAttributes(t *testing.T) {
	rep, err := Inspect(`<!DOCTYPE html><html data-base-path="auto" data-known-roots="admin,blog" lang="en"><head></head><body></body></html>`)
	require.NoError(t, err)
	require.True(t, rep.HasRoot)

	val, n := rep.RootAttr("data-base-path")
	assert.Equal(t, "auto", val)
	assert.Equal(t, 1, n)

	val, n = rep.RootAttr("data-known-roots")
	assert.Equal(t, "admin,blog", val)
	assert.Equal(t, 1, n)

	_, n = rep.RootAttr("data-missing")
	assert.Zero(t, n)
}

func TestInspectDuplicateRootAttribute(t *testing.T) {
	rep, err := Inspect(`<html data-base-path="auto" data-base-path="/x/"></html>`)
	require.NoError(t, err)
	_, n := rep.RootAttr("data-base-path")
	assert.Equal(t, 2, n)
}

func TestInspectAttributeOnOtherElement(t *testing.T) {
	rep, err := Inspect(`<html><body><div data-known-roots="a"></div></body></html>`)
	require.NoError(t, err)
	_, n := rep.RootAttr("data-known-roots")
	assert.Zero(t, n)
}

func TestInspectNoRoot(t *testing.T) {
	rep, err := Inspect(`<p>fragment</p>`)
	require.NoError(t, err)
	assert.False(t, rep.HasRoot)
}

func TestInspectRefs(t *testing.T) {
	doc := `<html><body>
<a href="/">Home</a>
<a href="/#top">Top</a>
<a href="//cdn.example.com/x">CDN</a>
<a href="https://example.com/">Ext</a>
<a href="relative">Rel</a>
<form action="/search"><input name="q"></form>
<form action="submit"></form>
<script>var s = '<a href="/from-script">';</script>
</body></html>`

	rep, err := Inspect(doc)
	require.NoError(t, err)
	assert.Equal(t, []Ref{
		{Tag: "a", Attr: "href", Value: "/"},
		{Tag: "a", Attr: "href", Value: "/#top"},
		{Tag: "a", Attr: "href", Value: "//cdn.example.com/x"},
		{Tag: "form", Attr: "action", Value: "/search"},
	}, rep.Refs)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"basepatch/config"
	"basepatch/rewrite"
	"basepatch/runner"
)

const page = `<!DOCTYPE html><html lang="en"><head>` + rewrite.SiteHeadFragment +
	`</head><body><a href="/blog/">Blog</a><a href="/#top">Top</a><a href="https://x.org/">Ext</a>` +
	`<form action="/search"></form></body></html>`

// useTree points the package globals at a fresh tree holding page.
func useTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "blog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte(page), 0o644))

	logger = zap.NewNop()
	cfg = &config.Config{
		Root:       root,
		Ignore:     config.DefaultIgnore,
		AdminPaths: config.DefaultAdminPaths,
		Workers:    1,
		Color:      config.ColorNever,
		DiffTheme:  "catppuccin-mocha",
	}
	t.Cleanup(func() { cfg, logger = nil, nil })
	return root
}

func TestCheckThenApply(t *testing.T) {
	useTree(t)
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	err := runCheck(cmd, nil)
	assert.ErrorIs(t, err, runner.ErrChecksFailed)
	assert.Contains(t, out.String(), "would rewrite index.html")

	require.NoError(t, runApply(cmd, nil))

	out.Reset()
	require.NoError(t, runCheck(cmd, nil))
	assert.Contains(t, out.String(), "1 file checked, all patched")
}

func TestPrintResolution(t *testing.T) {
	root := useTree(t)
	require.NoError(t, runApply(&cobra.Command{}, nil))
	patched, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printResolution(&out, string(patched), "/pr-42/blog/"))
	text := out.String()
	assert.Contains(t, text, "base:  /pr-42/\n")
	assert.Contains(t, text, "roots: blog,index.html\n")
	assert.Regexp(t, `a\[href\]\s+/blog/\s+->\s+/pr-42/blog/`, text)
	assert.Regexp(t, `a\[href\]\s+/#top\s+->\s+/pr-42/#top`, text)
	assert.Regexp(t, `form\[action\]\s+/search\s+->\s+/pr-42/search`, text)
	assert.NotContains(t, text, "x.org")

	out.Reset()
	require.NoError(t, printResolution(&out, string(patched), "/blog/post/"))
	assert.Contains(t, out.String(), "base:  /\n")
	assert.Regexp(t, `a\[href\]\s+/blog/\s+=\s+/blog/`, out.String())
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	l, err = newLogger(false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// load binds a fresh flag set, parses flags and loads the config.
func load(t *testing.T, flags []string, args []string) (*Config, error) {
	t.Helper()
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse(flags))
	return Load(v, args)
}

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := load(t, nil, []string{root})
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, "", cfg.BasePath)
	assert.Equal(t, []string{".git", "node_modules"}, cfg.Ignore)
	assert.Equal(t, []string{"admin/index.html", "src/admin/index.html"}, cfg.AdminPaths)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, DefaultSettle, cfg.Settle)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.Equal(t, "catppuccin-mocha", cfg.DiffTheme)
	assert.False(t, cfg.Verbose)
}

func TestLoadRootDefaultsToWorkingDirectory(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)

	cfg, err := load(t, nil, nil)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(cfg.Root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Setenv("BASEPATCH_ROOT", root)
	t.Setenv("BASEPATCH_WORKERS", "4")
	t.Setenv("BASEPATCH_IGNORE", ".git,dist")
	t.Setenv("BASEPATCH_BASE_PATH", "pr-1")
	t.Setenv("BASEPATCH_COLOR", "never")
	t.Setenv("BASEPATCH_ADMIN_PATH", "app/index.html,src/app/index.html")
	t.Setenv("BASEPATCH_SETTLE", "1s")

	cfg, err := load(t, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{".git", "dist"}, cfg.Ignore)
	assert.Equal(t, "/pr-1/", cfg.BasePath)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.Equal(t, []string{"app/index.html", "src/app/index.html"}, cfg.AdminPaths)
	assert.Equal(t, time.Second, cfg.Settle)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("BASEPATCH_WORKERS", "4")
	cfg, err := load(t, []string{"--workers=2", "--admin-path=app/index.html"}, []string{t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []string{"app/index.html"}, cfg.AdminPaths)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "basepatch.yaml")
	require.NoError(t, os.WriteFile(file, []byte("workers: 3\nbase-path: /preview\n"), 0o644))

	cfg, err := load(t, []string{"--config=" + file}, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "/preview/", cfg.BasePath)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := load(t, nil, []string{file})
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = load(t, nil, []string{filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = load(t, []string{"--workers=0"}, []string{dir})
	assert.ErrorContains(t, err, "workers")

	_, err = load(t, []string{"--settle=0s"}, []string{dir})
	assert.ErrorContains(t, err, "settle")

	_, err = load(t, []string{"--color=sometimes"}, []string{dir})
	assert.ErrorContains(t, err, "color")

	_, err = load(t, []string{"--config=" + filepath.Join(dir, "nope.yaml")}, []string{dir})
	assert.Error(t, err)
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"auto":      "auto",
		"/":         "/",
		"pr-42":     "/pr-42/",
		"/docs":     "/docs/",
		" /a/b/ ":   "/a/b/",
		"//twice//": "/twice/",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeBasePath(in), "input %q", in)
	}
}

// Package config handles all tool configuration.
// Flags take precedence, then BASEPATCH_* environment variables, then an
// optional YAML config file, then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"basepatch/rewrite"
)

// EnvPrefix prefixes every environment variable the tool reads.
const EnvPrefix = "BASEPATCH"

// Keys shared by flags, environment variables and the config file.
const (
	KeyConfig     = "config"
	KeyRoot       = "root"
	KeyBasePath   = "base-path"
	KeyIgnore     = "ignore"
	KeyAdminPaths = "admin-path"
	KeyWorkers    = "workers"
	KeySettle     = "settle"
	KeyColor      = "color"
	KeyDiffTheme  = "diff-theme"
	KeyVerbose    = "verbose"
)

// Accepted values for Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var (
	// DefaultIgnore lists directories that never belong to the site.
	DefaultIgnore = []string{".git", "node_modules"}
	// DefaultAdminPaths are the built and source locations of the admin
	// entry page.
	DefaultAdminPaths = rewrite.DefaultAdminPaths
)

// DefaultSettle is how long a file must stay untouched before watch mode
// rewrites it.
const DefaultSettle = 250 * time.Millisecond

// ErrNotDirectory is returned when the project root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Config holds the complete tool configuration.
type Config struct {
	// Root is the project tree whose .html files are rewritten in place.
	Root string
	// BasePath, when non-empty, is written to every document as an explicit
	// data-base-path. Empty keeps existing values and inserts "auto".
	BasePath string
	// Ignore names directories skipped at every depth.
	Ignore []string
	// AdminPaths are root-relative, slash-separated paths of the admin
	// entry page.
	AdminPaths []string
	// Workers bounds how many files are processed at once. 1 processes the
	// tree sequentially in walk order.
	Workers int
	// Settle is the quiet period watch mode waits after the last change to
	// a file before rewriting it.
	Settle time.Duration
	// Color selects diff highlighting: auto, always or never.
	Color string
	// DiffTheme is the Chroma style used for highlighted diffs.
	DiffTheme string
	// Verbose enables debug logging.
	Verbose bool
}

// BindFlags registers the shared flags on fs and binds flags, environment
// and defaults into v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String(KeyConfig, "", "Path to a YAML config file (env: BASEPATCH_CONFIG)")
	fs.String(KeyRoot, "", "Project tree to rewrite (env: BASEPATCH_ROOT, default: current directory)")
	fs.String(KeyBasePath, "", "Write an explicit data-base-path instead of auto (env: BASEPATCH_BASE_PATH)")
	fs.StringSlice(KeyIgnore, DefaultIgnore, "Directory name to skip, repeatable (env: BASEPATCH_IGNORE, comma-separated)")
	fs.StringSlice(KeyAdminPaths, DefaultAdminPaths, "Relative path of the admin entry page, repeatable (env: BASEPATCH_ADMIN_PATH)")
	fs.Int(KeyWorkers, 1, "Number of files processed concurrently (env: BASEPATCH_WORKERS)")
	fs.Duration(KeySettle, DefaultSettle, "Quiet period before watch mode rewrites a changed file (env: BASEPATCH_SETTLE)")
	fs.String(KeyColor, ColorAuto, "Diff highlighting: auto, always or never (env: BASEPATCH_COLOR)")
	fs.String(KeyDiffTheme, "catppuccin-mocha", "Chroma style for highlighted diffs (env: BASEPATCH_DIFF_THEME)")
	fs.BoolP(KeyVerbose, "v", false, "Enable debug logging (env: BASEPATCH_VERBOSE)")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(fs)
}

// Load reads the optional config file, applies the positional root
// argument if any, and returns a validated Config.
func Load(v *viper.Viper, args []string) (*Config, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", file, err)
		}
	}

	// --- root ---
	root := v.GetString(KeyRoot)
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not determine current working directory: %w", err)
		}
		root = cwd
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q: %w", root, ErrNotDirectory)
	}

	// --- workers ---
	workers := v.GetInt(KeyWorkers)
	if workers < 1 {
		return nil, fmt.Errorf("invalid --workers %d: must be at least 1", workers)
	}

	// --- settle ---
	settle := v.GetDuration(KeySettle)
	if settle <= 0 {
		return nil, fmt.Errorf("invalid --settle %s: must be positive", settle)
	}

	// --- color ---
	color := strings.ToLower(strings.TrimSpace(v.GetString(KeyColor)))
	switch color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return nil, fmt.Errorf("invalid --color %q: must be \"auto\", \"always\" or \"never\"", color)
	}

	ignore := splitList(v.GetStringSlice(KeyIgnore))
	admin := splitList(v.GetStringSlice(KeyAdminPaths))
	if len(admin) == 0 {
		admin = DefaultAdminPaths
	}

	return &Config{
		Root:       root,
		BasePath:   NormalizeBasePath(v.GetString(KeyBasePath)),
		Ignore:     ignore,
		AdminPaths: admin,
		Workers:    workers,
		Settle:     settle,
		Color:      color,
		DiffTheme:  v.GetString(KeyDiffTheme),
		Verbose:    v.GetBool(KeyVerbose),
	}, nil
}

// NormalizeBasePath trims whitespace and gives a non-empty path a leading
// and trailing slash. Empty and "auto" pass through unchanged.
//
// Examples: "pr-42" -> "/pr-42/", "/docs" -> "/docs/", "/" -> "/".
func NormalizeBasePath(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || value == "auto" {
		return value
	}
	value = strings.Trim(value, "/")
	if value == "" {
		return "/"
	}
	return "/" + value + "/"
}

// splitList flattens values that may themselves be comma-separated (as
// they are when read from an environment variable), dropping empties.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

package runner

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-isatty"
	"github.com/pmezard/go-difflib/difflib"

	"basepatch/config"
)

// differ writes unified diffs, highlighted when the destination is a
// terminal or colour is forced.
type differ struct {
	color bool
	style *chroma.Style
}

func newDiffer(cfg *config.Config, out io.Writer) *differ {
	style := styles.Get(cfg.DiffTheme)
	if style == nil {
		style = styles.Fallback
	}
	return &differ{color: wantColor(cfg.Color, out), style: style}
}

// wantColor resolves the --color mode for out. In auto mode only a real
// terminal gets escape sequences.
func wantColor(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// unifiedDiff returns the unified diff of before and after for rel, or ""
// when they are equal.
func unifiedDiff(rel, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + rel,
		ToFile:   "b/" + rel,
		Context:  1,
	})
}

func (d *differ) write(w io.Writer, rel, before, after string) error {
	text, err := unifiedDiff(rel, before, after)
	if err != nil {
		return fmt.Errorf("diffing %q: %w", rel, err)
	}
	if text == "" {
		return nil
	}
	if !d.color {
		_, err := io.WriteString(w, text)
		return err
	}
	return d.highlight(w, text)
}

// highlight runs text through Chroma's diff lexer and 256-colour terminal
// formatter. It falls back to plain text if tokenising fails.
func (d *differ) highlight(w io.Writer, text string) error {
	l := lexers.Get("diff")
	if l == nil {
		l = lexers.Fallback
	}
	f := formatters.Get("terminal256")
	if f == nil {
		f = formatters.Fallback
	}

	it, err := chroma.Coalesce(l).Tokenise(nil, text)
	if err != nil {
		_, err = io.WriteString(w, text)
		return err
	}
	return f.Format(w, d.style, it)
}

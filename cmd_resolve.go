package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"basepatch/inspect"
	"basepatch/models"
	"basepatch/resolve"
	"basepatch/rewrite"
)

var (
	resolveFile string
	resolveURL  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve --file page.html --url /pr-42/blog/",
	Short: "Show the base and links a patched page resolves to at a URL",
	Long: `resolve reads a patched page and prints what its injected scripts do when
the page is served at --url: the base path the bootstrap publishes and
every root-relative link and form action as the footer rewrites it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(resolveFile)
		if err != nil {
			return fmt.Errorf("reading %q: %w", resolveFile, err)
		}
		return printResolution(cmd.OutOrStdout(), string(raw), resolveURL)
	},
}

func printResolution(w io.Writer, content, url string) error {
	rep, err := inspect.Inspect(content)
	if err != nil {
		return err
	}
	attr, _ := rep.RootAttr(rewrite.AttrBasePath)
	list, _ := rep.RootAttr(rewrite.AttrKnownRoots)
	roots := models.ParseKnownRoots(list)
	base := resolve.ResolveBase(attr, roots, url)

	fmt.Fprintf(w, "base:  %s\n", base)
	fmt.Fprintf(w, "roots: %s\n", roots)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ref := range rep.Refs {
		apply := resolve.RewriteHref
		if ref.Tag == "form" {
			apply = resolve.RewriteAction
		}
		out, changed := apply(base, ref.Value)
		mark := "="
		if changed {
			mark = "->"
		}
		fmt.Fprintf(tw, "%s[%s]\t%s\t%s\t%s\n", ref.Tag, ref.Attr, ref.Value, mark, out)
	}
	return tw.Flush()
}

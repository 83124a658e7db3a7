package main

import (
	"github.com/spf13/cobra"

	"basepatch/runner"
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Rewrite once, then keep the tree patched while it changes",
	Long: `watch applies the rewrite and then follows the tree with filesystem
notifications, patching pages as the site generator writes them and
refreshing data-known-roots on every page when a top-level entry appears
or disappears. Stop it with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		return runner.New(cfg, logger).Watch(ctx, runner.Options{})
	},
}

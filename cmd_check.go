package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"basepatch/runner"
)

var showDiff bool

var checkCmd = &cobra.Command{
	Use:   "check [root]",
	Short: "Report files that still need rewriting, without writing",
	Long: `check runs the rewrite in memory and fails when any file would change or a
patched document is structurally wrong: the root element must carry each
attribute exactly once and the scripts for its kind must be present.

Use it in CI after the build step to catch a forgotten patch run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	rep, err := runner.New(cfg, logger).Check(ctx, out, showDiff)
	if err != nil {
		return err
	}

	for _, f := range rep.Pending {
		fmt.Fprintf(out, "would rewrite %s\n", f)
	}
	for _, p := range rep.Problems {
		fmt.Fprintf(out, "%s: %s\n", p.File, p.Message)
	}
	if !rep.OK() {
		return fmt.Errorf("%w: %s pending, %s", runner.ErrChecksFailed,
			humanize.Comma(int64(len(rep.Pending))),
			english.Plural(len(rep.Problems), "problem", ""))
	}
	fmt.Fprintf(out, "%s checked, all patched\n", english.Plural(rep.Summary.Files, "file", ""))
	return nil
}

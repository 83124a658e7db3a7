// basepatch rewrites a generated static site in place so the same build can
// be served from the domain root or from any URL prefix.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"basepatch/config"
	"basepatch/runner"
)

var (
	// v carries flags, BASEPATCH_* environment and the config file.
	v = viper.New()

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command; without a subcommand it applies the
// rewrite.
var rootCmd = &cobra.Command{
	Use:   "basepatch [root]",
	Short: "Make a built static site servable under any URL prefix",
	Long: `basepatch post-processes every .html file of a built site so that the
same output works at the domain root and under an arbitrary path prefix.

Each page gets data-known-roots and data-base-path on <html>, a head
bootstrap that publishes window.__BASE_PATH__ at runtime and, for site pages,
a footer script that rewrites root-relative links and form actions.

Running it again is safe: already patched files are left untouched.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runApply,
}

var applyCmd = &cobra.Command{
	Use:   "apply [root]",
	Short: "Rewrite every .html file under root (the default command)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runApply,
}

func init() {
	cobra.CheckErr(config.BindFlags(v, rootCmd.PersistentFlags()))

	checkCmd.Flags().BoolVar(&showDiff, "diff", false, "Print a unified diff of every file that would change")

	resolveCmd.Flags().StringVar(&resolveFile, "file", "", "Patched .html file to read (required)")
	resolveCmd.Flags().StringVar(&resolveURL, "url", "/", "URL path the page is served at")
	_ = resolveCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(resolveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger shared by every
// command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(v, args)
	if err != nil {
		return err
	}
	logger, err = newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// newLogger returns a human-readable console logger on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	_, err := runner.New(cfg, logger).Run(ctx, runner.Options{})
	return err
}

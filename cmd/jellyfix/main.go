package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Nomadcxx/jellyfix/internal/ui"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
	quiet   bool
	noColor bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jellyfix",
		Short: "Fix Jellyfin media library naming and subtitles",
		Long: `Jellyfix brings a media library into the Jellyfin layout.

It renames movies and episodes to "Title (Year)" form, moves them into
their own folders and season folders, tags untagged Portuguese subtitles,
resolves numbered subtitle variants and removes foreign subtitles.

Every change is planned first. Nothing is touched until a plan is applied,
and an existing file is never overwritten.

Examples:
  jellyfix scan /media/Movies
  jellyfix plan /media/Movies --save
  jellyfix apply --plan latest
  jellyfix watch /media/TV --apply`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				ui.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/jellyfix/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "no log output on the console")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newPlansCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newReplanCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(ui.Output(), "jellyfix %s\n", version)
		},
	}
}

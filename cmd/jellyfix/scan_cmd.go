package main

import (
	"github.com/Nomadcxx/jellyfix/internal/scanner"
	"github.com/Nomadcxx/jellyfix/internal/ui"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <directory>",
		Short: "Classify the files of a library",
		Long: `Walk a library and report what it contains: movies, episodes,
subtitles by category, images, NFO files and non-media files.

Nothing is planned or changed.

Examples:
  jellyfix scan /media/Movies`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := absDir(args[0])
			if err != nil {
				return err
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			spinner := ui.NewSpinner("Scanning " + root)
			spinner.Start()
			result, err := scanner.New(e.cfg, scanner.WithLogger(e.logger)).Scan(cmd.Context(), root)
			spinner.Stop()
			if err != nil {
				return err
			}
			ui.ScanReport(result)
			return nil
		},
	}
}

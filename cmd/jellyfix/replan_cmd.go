package main

import (
	"fmt"
	"path/filepath"

	"github.com/Nomadcxx/jellyfix/internal/media"
	"github.com/Nomadcxx/jellyfix/internal/metadata"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/Nomadcxx/jellyfix/internal/ui"
	"github.com/spf13/cobra"
)

func newReplanCmd() *cobra.Command {
	var (
		md     metadata.Metadata
		root   string
		save   bool
		reason bool
	)

	cmd := &cobra.Command{
		Use:   "replan <video>",
		Short: "Correct the title of one video in a plan",
		Long: `Re-plan one video with a title you supply instead of a metadata
lookup. Its subtitles, NFO and folder extras follow the new name. The
result replaces that video's operations in the plan of --root (default:
the video's folder, or the series folder for an episode in a season
folder).

Examples:
  jellyfix replan "/media/Movies/Matrix 2.mkv" --title "The Matrix Reloaded" --year 2003
  jellyfix replan ep.mkv --title "Dark" --tmdb 70523 --root /media/TV --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if md.Title == "" {
				return fmt.Errorf("--title is required")
			}
			video, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if root == "" {
				root = defaultReplanRoot(video)
			}
			if root, err = absDir(root); err != nil {
				return err
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			planner := e.planner()
			plan, err := planner.Plan(cmd.Context(), root)
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}
			replacement, err := planner.Replan(cmd.Context(), root, video, md)
			if err != nil {
				return err
			}
			if replacement == nil {
				ui.WarningMsg("%s no longer exists or needs no change", video)
			}
			plan.Operations = renamer.Splice(plan.Operations, video, replacement)

			ui.PlanReport(plan, reason)
			if save {
				return savePlan(plan, "replan")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&md.Title, "title", "", "corrected title")
	cmd.Flags().IntVar(&md.Year, "year", 0, "corrected year")
	cmd.Flags().IntVar(&md.TMDBID, "tmdb", 0, "TMDB id for the folder suffix")
	cmd.Flags().StringVar(&md.IMDBID, "imdb", "", "IMDb id for the folder suffix")
	cmd.Flags().IntVar(&md.TVDBID, "tvdb", 0, "TVDB id for the folder suffix")
	cmd.Flags().StringVar(&root, "root", "", "library directory to plan")
	cmd.Flags().BoolVarP(&save, "save", "s", false, "save the spliced plan")
	cmd.Flags().BoolVarP(&reason, "reasons", "r", false, "show the reason for each operation")

	return cmd
}

func defaultReplanRoot(video string) string {
	dir := filepath.Dir(video)
	if media.IsSeasonFolder(filepath.Base(dir)) {
		return filepath.Dir(dir)
	}
	return dir
}

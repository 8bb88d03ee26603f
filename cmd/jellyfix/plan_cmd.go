package main

import (
	"fmt"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/plans"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/Nomadcxx/jellyfix/internal/ui"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	var (
		save        bool
		showReasons bool
	)

	cmd := &cobra.Command{
		Use:   "plan <directory>",
		Short: "Preview the changes that would organize a library",
		Long: `Scan a library and print every rename, move and delete that would
bring it into the Jellyfin layout. Operations whose destination is already
taken are listed as conflicts and left out.

With --save the plan is written to ~/.config/jellyfix/plans so it can be
reviewed and applied later with 'jellyfix apply --plan'.

Examples:
  jellyfix plan /media/Movies
  jellyfix plan /media/TV --save --reasons`,
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

			plan, err := e.planner().Plan(cmd.Context(), root)
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}
			ui.PlanReport(plan, showReasons)

			if save {
				return savePlan(plan, "plan")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&save, "save", "s", false, "save the plan for a later apply")
	cmd.Flags().BoolVarP(&showReasons, "reasons", "r", false, "show the reason for each operation")

	return cmd
}

func savePlan(plan *renamer.Plan, command string) error {
	if len(plan.Operations) == 0 {
		return nil
	}
	store, err := plans.DefaultStore()
	if err != nil {
		return err
	}
	saved, err := store.Save(plan, command)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	ui.SuccessMsg("Saved plan %s", saved.ID)
	ui.InfoMsg("Apply it with: jellyfix apply --plan %s", saved.ID[:8])
	return nil
}

func newPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List and manage saved plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := plans.DefaultStore()
			if err != nil {
				return err
			}
			saved, err := store.List()
			if err != nil {
				return err
			}
			ui.SavedPlansReport(saved)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id|latest>",
		Short: "Print a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := plans.DefaultStore()
			if err != nil {
				return err
			}
			saved, err := store.Load(args[0])
			if err != nil {
				return err
			}
			ui.KeyValue(
				[2]string{"ID", saved.ID},
				[2]string{"Created", saved.CreatedAt.Local().Format("2006-01-02 15:04:05")},
				[2]string{"Command", saved.Command},
			)
			ui.PlanReport(saved.Plan, true)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := plans.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			ui.SuccessMsg("Deleted plan %s", args[0])
			return nil
		},
	})

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete saved plans older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := plans.DefaultStore()
			if err != nil {
				return err
			}
			n, err := store.Prune(olderThan)
			if err != nil {
				return err
			}
			ui.SuccessMsg("Removed %d saved plans", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of plans to remove")
	cmd.AddCommand(prune)

	return cmd
}

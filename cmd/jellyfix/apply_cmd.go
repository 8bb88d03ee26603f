package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Nomadcxx/jellyfix/internal/database"
	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/plans"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/Nomadcxx/jellyfix/internal/ui"
	"github.com/spf13/cobra"
)

type applyOptions struct {
	planID string
	dryRun bool
	yes    bool
	// wait blocks on the apply lock instead of failing
	wait   bool
}

func newApplyCmd() *cobra.Command {
	var (
		planID string
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "apply [directory]",
		Short: "Organize a library",
		Long: `Plan a library and apply the result, or apply a saved plan.

The default comes from organize.dry_run in the config, which is true on a
fresh install. Pass --dry-run=false to change files.

Every applied run is recorded in the journal; see 'jellyfix history'.

Examples:
  jellyfix apply /media/Movies --dry-run=false
  jellyfix apply --plan latest --dry-run=false --yes
  jellyfix apply --plan 3f2a9c1e`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (planID == "") {
				return fmt.Errorf("give either a directory or --plan")
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			opts := applyOptions{dryRun: e.cfg.Organize.DryRun, yes: yes}
			if cmd.Flags().Changed("dry-run") {
				opts.dryRun = dryRun
			}

			var plan *renamer.Plan
			if planID != "" {
				store, err := plans.DefaultStore()
				if err != nil {
					return err
				}
				saved, err := store.Load(planID)
				if err != nil {
					return err
				}
				plan, opts.planID = saved.Plan, saved.ID
				ui.InfoMsg("Loaded plan %s from %s", saved.ID, ui.FormatTime(saved.CreatedAt))
			} else {
				root, err := absDir(args[0])
				if err != nil {
					return err
				}
				if plan, err = e.planner().Plan(cmd.Context(), root); err != nil {
					return fmt.Errorf("planning failed: %w", err)
				}
			}

			ui.PlanReport(plan, verbose)
			_, err = applyPlan(cmd.Context(), e, plan, opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&planID, "plan", "p", "", "saved plan id, id prefix, or \"latest\"")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", true, "preview without changing files")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

// applyPlan executes plan under the apply lock and journals the run. A dry
// run touches neither the lock nor the journal.
func applyPlan(ctx context.Context, e *env, plan *renamer.Plan, opts applyOptions) (*renamer.Result, error) {
	if len(plan.Operations) == 0 {
		return &renamer.Result{}, nil
	}

	execOpts := []renamer.ExecutorOption{
		renamer.WithExecutorLogger(e.logger),
		renamer.WithCleanupRoot(plan.Root),
	}

	if opts.dryRun {
		result, err := renamer.NewExecutor(execOpts...).Execute(ctx, plan.Operations, true)
		if result != nil {
			ui.ResultReport(result, true)
		}
		return result, err
	}

	if !opts.yes && !ui.Confirm(fmt.Sprintf("Apply %d operations to %s?", len(plan.Operations), plan.Root)) {
		ui.InfoMsg("Cancelled, nothing was changed")
		return nil, nil
	}

	fl, err := lock(ctx, opts.wait)
	if err != nil {
		return nil, err
	}
	defer fl.Unlock()

	journal, err := database.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	run, err := journal.StartRun(plan.Root, opts.planID)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	e.logger.Info("journal", "Run started",
		logging.F("run", run.ID),
		logging.F("root", plan.Root),
		logging.F("operations", len(plan.Operations)))

	if ui.IsTerminal() {
		bar := ui.NewProgressBar(len(plan.Operations), "Applying")
		execOpts = append(execOpts, renamer.WithProgress(func(done, _ int) { bar.Update(done) }))
	}

	sizes := deleteSizes(plan.Operations)
	result, execErr := renamer.NewExecutor(execOpts...).Execute(ctx, plan.Operations, false)
	if err := recordRun(journal, run.ID, result, execErr, sizes); err != nil {
		e.logger.Error("journal", "Failed to record run", err, logging.F("run", run.ID))
	}

	if execErr == nil && e.cfg.Artwork.DownloadPosters {
		if n := downloadPosters(ctx, e, e.resolved.Take(), result); n > 0 {
			ui.InfoMsg("Saved %d posters", n)
		}
	}

	ui.ResultReport(result, false)
	ui.InfoMsg("Recorded as run %s", run.ID[:8])
	return result, execErr
}

// recordRun journals the outcome of one execution and closes the run
func recordRun(journal *database.Journal, runID string, result *renamer.Result, execErr error, sizes map[string]int64) error {
	if result == nil {
		result = &renamer.Result{}
	}
	if err := journal.LogOperations(runID, operationLogs(result, sizes)); err != nil {
		return err
	}

	msg := ""
	switch {
	case execErr != nil:
		msg = execErr.Error()
	case len(result.Errors) > 0:
		msg = fmt.Sprintf("%d operations failed, first: %s", len(result.Errors), result.Errors[0].Error())
	}
	return journal.CompleteRun(runID, runStatus(result, execErr), runStats(result.Stats), msg)
}

// runStatus maps an execution to the run status stored in the journal
func runStatus(result *renamer.Result, execErr error) database.RunStatus {
	switch {
	case errors.Is(execErr, context.Canceled), errors.Is(execErr, context.DeadlineExceeded):
		return database.RunCancelled
	case execErr != nil:
		return database.RunFailed
	case result.Stats.Failed == 0:
		return database.RunSuccess
	}
	for _, o := range result.Executed {
		if o.Status == renamer.StatusOK {
			return database.RunPartial
		}
	}
	return database.RunFailed
}

func runStats(s renamer.Stats) database.RunStats {
	return database.RunStats{
		Renamed: s.Renamed,
		Moved:   s.Moved,
		Deleted: s.Deleted,
		Failed:  s.Failed,
		Skipped: s.Skipped,
		Cleaned: s.Cleaned,
	}
}

// operationLogs converts executed outcomes to journal rows. Dry-run
// outcomes are not journaled.
func operationLogs(result *renamer.Result, sizes map[string]int64) []database.OperationLog {
	logs := make([]database.OperationLog, 0, len(result.Executed))
	for _, o := range result.Executed {
		var status database.OperationStatus
		switch o.Status {
		case renamer.StatusOK:
			status = database.StatusOK
		case renamer.StatusFailed:
			status = database.StatusFailed
		case renamer.StatusSkipped:
			status = database.StatusSkipped
		default:
			continue
		}

		entry := database.OperationLog{
			OperationType: o.Op.Type.String(),
			SourcePath:    o.Op.Source,
			Reason:        o.Op.Reason,
			Status:        status,
			ErrorMessage:  o.Error,
			Duration:      o.Duration,
		}
		if o.Op.Type == renamer.OpDelete {
			if status == database.StatusOK {
				entry.BytesFreed = sizes[o.Op.Source]
			}
		} else {
			entry.TargetPath = o.Op.Destination
		}
		logs = append(logs, entry)
	}
	return logs
}

// deleteSizes records the size of every file a plan deletes, read before
// the files are gone.
func deleteSizes(ops []renamer.Operation) map[string]int64 {
	sizes := make(map[string]int64)
	for _, op := range ops {
		if op.Type != renamer.OpDelete {
			continue
		}
		if info, err := os.Stat(op.Source); err == nil {
			sizes[op.Source] = info.Size()
		}
	}
	return sizes
}

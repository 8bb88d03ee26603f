package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/Nomadcxx/jellyfix/internal/ui"
	"github.com/Nomadcxx/jellyfix/internal/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		apply    bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>...",
		Short: "Re-plan libraries whenever they change",
		Long: `Monitor one or more libraries. Once a library has been quiet for the
debounce interval (watch.debounce_seconds), it is planned again and the
preview is printed. With --apply the plan is executed right away under the
apply lock and recorded in the journal.

Examples:
  jellyfix watch /media/Movies
  jellyfix watch /media/Movies /media/TV --apply --debounce 30s`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := make([]string, 0, len(args))
			for _, arg := range args {
				root, err := absDir(arg)
				if err != nil {
					return err
				}
				roots = append(roots, root)
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if !cmd.Flags().Changed("debounce") {
				debounce = time.Duration(e.cfg.Watch.DebounceSeconds) * time.Second
			}

			h := &watchHandler{env: e, planner: e.planner(), apply: apply}
			w, err := watcher.NewWatcher(h, watcher.WithDebounce(debounce), watcher.WithLogger(e.logger))
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			defer w.Close()

			if err := w.Watch(roots); err != nil {
				return fmt.Errorf("setting up watch: %w", err)
			}

			for _, root := range roots {
				ui.InfoMsg("Watching %s", ui.Path(root))
			}
			if apply {
				ui.WarningMsg("Plans are applied automatically")
			} else {
				ui.InfoMsg("Preview only, pass --apply to change files")
			}
			ui.InfoMsg("Press Ctrl+C to stop")

			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "apply plans instead of printing them")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before re-planning")

	return cmd
}

// watchHandler re-plans every library touched by a batch
type watchHandler struct {
	env     *env
	planner *renamer.Planner
	apply   bool
}

func (h *watchHandler) HandleBatch(ctx context.Context, batch watcher.Batch) error {
	var errs []error
	for _, root := range batch.Roots {
		if err := h.handleRoot(ctx, root); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			h.env.logger.Error("watcher", "Re-plan failed", err, logging.F("root", root))
			errs = append(errs, fmt.Errorf("%s: %w", root, err))
		}
	}
	return errors.Join(errs...)
}

func (h *watchHandler) handleRoot(ctx context.Context, root string) error {
	plan, err := h.planner.Plan(ctx, root)
	if err != nil {
		return err
	}
	// our own moves come back as events; an organized tree plans empty
	if len(plan.Operations) == 0 {
		h.env.logger.Debug("watcher", "Library already organized", logging.F("root", root))
		return nil
	}

	ui.PlanReport(plan, false)
	if !h.apply {
		return nil
	}
	_, err = applyPlan(ctx, h.env, plan, applyOptions{yes: true, wait: true})
	return err
}

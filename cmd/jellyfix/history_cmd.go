package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/database"
	"github.com/Nomadcxx/jellyfix/internal/ui"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit     int
		file      string
		stats     bool
		olderThan time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show journaled apply runs",
		Long: `List recent apply runs, or the operations of one run when a run id
(or a unique prefix of one) is given.

Examples:
  jellyfix history
  jellyfix history 3f2a9c1e
  jellyfix history --file "/media/Movies/Heat (1995)/Heat (1995).mkv"
  jellyfix history --stats
  jellyfix history --prune 2160h`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := database.Open()
			if err != nil {
				return fmt.Errorf("failed to open journal: %w", err)
			}
			defer journal.Close()

			switch {
			case olderThan > 0:
				n, err := journal.DeleteRunsBefore(time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				ui.SuccessMsg("Removed %d runs", n)
				return nil

			case stats:
				return showOperationStats(journal)

			case file != "":
				path, err := filepath.Abs(file)
				if err != nil {
					return err
				}
				return showFileHistory(journal, path)

			case len(args) == 1:
				run, err := journal.GetRun(args[0])
				if err != nil {
					return err
				}
				ops, err := journal.RunOperations(run.ID)
				if err != nil {
					return err
				}
				ui.RunOperationsReport(run, ops)
				return nil
			}

			runs, err := journal.RecentRuns(limit)
			if err != nil {
				return err
			}
			ui.RunsReport(runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of runs to list")
	cmd.Flags().StringVarP(&file, "file", "f", "", "show every operation that touched a path")
	cmd.Flags().BoolVar(&stats, "stats", false, "totals over all runs")
	cmd.Flags().DurationVar(&olderThan, "prune", 0, "delete runs older than this")

	return cmd
}

func showOperationStats(journal *database.Journal) error {
	counts, freed, err := journal.GetOperationStats()
	if err != nil {
		return err
	}
	ui.Section("Totals")
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	pairs := make([][2]string, 0, len(types)+1)
	for _, t := range types {
		pairs = append(pairs, [2]string{ui.OpType(t), ui.FormatCount(counts[t])})
	}
	pairs = append(pairs, [2]string{"Space freed", ui.FormatBytes(freed)})
	ui.KeyValue(pairs...)
	return nil
}

func showFileHistory(journal *database.Journal, path string) error {
	ops, err := journal.SourceHistory(path)
	if err != nil {
		return err
	}
	ui.Section("History of " + filepath.Base(path))
	if len(ops) == 0 {
		ui.InfoMsg("No journaled operation touched %s", path)
		return nil
	}
	t := ui.NewTable("When", "Run", "#", "Type", "Source", "Destination", "Status")
	t.SetMaxColumnWidth(60)
	for _, op := range ops {
		runID := op.RunID
		if len(runID) > 8 {
			runID = runID[:8]
		}
		t.AddRow(ui.FormatTime(op.ExecutedAt), runID, strconv.Itoa(op.Seq), ui.OpType(op.OperationType),
			op.SourcePath, op.TargetPath, string(op.Status))
	}
	t.Render()
	return nil
}

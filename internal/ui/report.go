package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/database"
	"github.com/Nomadcxx/jellyfix/internal/plans"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/Nomadcxx/jellyfix/internal/scanner"
	"github.com/Nomadcxx/jellyfix/internal/subtitle"
)

// rel shortens path to be relative to root when it lies inside it
func rel(root, path string) string {
	if root == "" {
		return path
	}
	r, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(r, "..") {
		return path
	}
	return r
}

// ScanReport prints the file counts of a scan
func ScanReport(scan *scanner.ScanResult) {
	Section("Scan")
	KeyValue(
		[2]string{"Root", Path(scan.Root)},
		[2]string{"Files", FormatCount(scan.TotalFiles)},
		[2]string{"Movies", FormatCount(scan.TotalMovies)},
		[2]string{"Episodes", FormatCount(scan.TotalEpisodes)},
		[2]string{"Subtitles", FormatCount(len(scan.SubtitleFiles))},
		[2]string{"  kept language", FormatCount(len(scan.KeptSubtitles))},
		[2]string{"  foreign", FormatCount(len(scan.ForeignSubtitles))},
		[2]string{"  numbered variants", FormatCount(len(scan.VariantSubtitles))},
		[2]string{"  untagged Portuguese", FormatCount(len(scan.NoLangSubtitles))},
		[2]string{"Images", FormatCount(len(scan.ImageFiles))},
		[2]string{"NFO files", FormatCount(len(scan.NFOFiles))},
		[2]string{"Other files", FormatCount(len(scan.OtherFiles))},
		[2]string{"Non-media", FormatCount(len(scan.NonMediaFiles))},
	)

	langs := subtitle.CountLanguages(scan.SubtitleFiles)
	if len(langs) == 0 {
		return
	}
	t := NewTable("Language", "Code", "Files", "Forced", "Variants")
	t.SetAligns(AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight)
	for _, l := range langs {
		code := l.Lang
		if code == "" {
			code = Dim("-")
		}
		t.AddRow(l.Name, code, FormatCount(l.Files), FormatCount(l.Forced), FormatCount(l.Variants))
	}
	t.Render()
}

// PlanReport prints the operations and conflicts of a plan
func PlanReport(plan *renamer.Plan, verbose bool) {
	Section("Plan")
	if len(plan.Operations) == 0 {
		SuccessMsg("Nothing to do, %s is already organized", plan.Root)
	} else {
		headers := []string{"#", "Type", "Source", "Destination"}
		if verbose {
			headers = append(headers, "Reason")
		}
		t := NewTable(headers...)
		t.SetAligns(AlignRight)
		t.SetMaxColumnWidth(70)
		for i, op := range plan.Operations {
			dst := rel(plan.Root, op.Destination)
			if op.Type == renamer.OpDelete {
				dst = Dim("-")
			}
			row := []string{strconv.Itoa(i + 1), OpType(op.Type.String()), rel(plan.Root, op.Source), dst}
			if verbose {
				row = append(row, op.Reason)
			}
			t.AddRow(row...)
		}
		t.Render()
	}

	counts := plan.Counts()
	fmt.Fprintf(out, "%s renames, %s moves, %s deletes\n",
		FormatCount(counts[renamer.OpRename]),
		FormatCount(counts[renamer.OpMove]+counts[renamer.OpMoveRename]),
		FormatCount(counts[renamer.OpDelete]))

	if len(plan.Conflicts) > 0 {
		WarningMsg("%d operations skipped because of conflicts", len(plan.Conflicts))
		t := NewTable("Source", "Destination", "Reason")
		t.SetMaxColumnWidth(60)
		for _, c := range plan.Conflicts {
			t.AddRow(rel(plan.Root, c.Source), rel(plan.Root, c.Destination), c.Reason)
		}
		t.Render()
	}
}

// ResultReport prints the outcome of an execution
func ResultReport(result *renamer.Result, dryRun bool) {
	Section("Result")
	if dryRun {
		InfoMsg("Dry run: %d operations previewed, nothing was changed", len(result.Executed)-result.Stats.Skipped)
	}
	s := result.Stats
	KeyValue(
		[2]string{"Renamed", FormatCount(s.Renamed)},
		[2]string{"Moved", FormatCount(s.Moved)},
		[2]string{"Deleted", FormatCount(s.Deleted)},
		[2]string{"Skipped", FormatCount(s.Skipped)},
		[2]string{"Failed", FormatCount(s.Failed)},
		[2]string{"Folders cleaned", FormatCount(s.Cleaned)},
	)
	for _, e := range result.Errors {
		ErrorMsg("%s", e.Error())
	}
	switch {
	case s.Failed > 0:
		WarningMsg("Finished with %d failed operations", s.Failed)
	case !dryRun:
		SuccessMsg("Done")
	}
}

// SavedPlansReport lists saved plan files
func SavedPlansReport(saved []*plans.SavedPlan) {
	Section("Saved plans")
	if len(saved) == 0 {
		InfoMsg("No saved plans")
		return
	}
	t := NewTable("ID", "Created", "Root", "Renames", "Moves", "Deletes", "Conflicts")
	t.SetAligns(AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight)
	for _, p := range saved {
		t.AddRow(shortID(p.ID), FormatTime(p.CreatedAt), p.Plan.Root,
			strconv.Itoa(p.Summary.Renames), strconv.Itoa(p.Summary.Moves),
			strconv.Itoa(p.Summary.Deletes), strconv.Itoa(p.Summary.Conflicts))
	}
	t.Render()
}

// RunsReport lists journaled runs
func RunsReport(runs []*database.Run) {
	Section("History")
	if len(runs) == 0 {
		InfoMsg("No runs recorded")
		return
	}
	t := NewTable("Run", "Started", "Root", "Status", "Renamed", "Moved", "Deleted", "Failed", "Duration")
	t.SetAligns(AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight)
	for _, r := range runs {
		t.AddRow(shortID(r.ID), FormatTime(r.StartedAt), r.Root, runStatus(r.Status),
			strconv.Itoa(r.Stats.Renamed), strconv.Itoa(r.Stats.Moved),
			strconv.Itoa(r.Stats.Deleted), strconv.Itoa(r.Stats.Failed),
			FormatDuration(r.Duration()))
	}
	t.Render()
}

// RunOperationsReport prints one run and its operations
func RunOperationsReport(run *database.Run, ops []database.OperationLog) {
	Section("Run " + shortID(run.ID))
	pairs := [][2]string{
		{"ID", run.ID},
		{"Root", Path(run.Root)},
		{"Status", runStatus(run.Status)},
		{"Started", run.StartedAt.Local().Format("2006-01-02 15:04:05")},
	}
	if run.PlanID != "" {
		pairs = append(pairs, [2]string{"Plan", run.PlanID})
	}
	if run.ErrorMessage != "" {
		pairs = append(pairs, [2]string{"Error", run.ErrorMessage})
	}
	KeyValue(pairs...)

	if len(ops) == 0 {
		return
	}
	t := NewTable("#", "Type", "Source", "Destination", "Status", "Error")
	t.SetAligns(AlignRight)
	t.SetMaxColumnWidth(60)
	for _, op := range ops {
		t.AddRow(strconv.Itoa(op.Seq), OpType(op.OperationType), rel(run.Root, op.SourcePath),
			rel(run.Root, op.TargetPath), opStatus(op.Status), op.ErrorMessage)
	}
	t.Render()
}

func runStatus(s database.RunStatus) string {
	switch s {
	case database.RunSuccess:
		return Success(string(s))
	case database.RunPartial, database.RunCancelled:
		return Warning(string(s))
	case database.RunFailed:
		return Error(string(s))
	}
	return string(s)
}

func opStatus(s database.OperationStatus) string {
	switch s {
	case database.StatusOK:
		return Success(string(s))
	case database.StatusSkipped:
		return Warning(string(s))
	case database.StatusFailed:
		return Error(string(s))
	}
	return string(s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

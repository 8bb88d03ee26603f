package renamer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/transfer"
)

// Status is the outcome of one executed operation.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusDryRun  Status = "dry_run"
)

// Outcome records what happened to one operation.
type Outcome struct {
	Op       Operation     `json:"op"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ExecError is a failed operation.
type ExecError struct {
	Op  Operation
	Err error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op.Type, e.Op.Source, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Result is returned by Execute.
type Result struct {
	Stats    Stats
	Errors   []ExecError
	Executed []Outcome
	// CleanedDirs lists the empty folders removed after the run.
	CleanedDirs []string
}

// Executor applies planned operations to the filesystem.
type Executor struct {
	logger      *logging.Logger
	transferer  transfer.Transferer
	cleanupRoot string
	progress    func(done, total int)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the logger.
func WithExecutorLogger(l *logging.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTransferer replaces the default rename-then-copy mover.
func WithTransferer(t transfer.Transferer) ExecutorOption {
	return func(e *Executor) {
		if t != nil {
			e.transferer = t
		}
	}
}

// WithCleanupRoot lets empty-folder cleanup climb from a source folder up to
// (but never including) root.
func WithCleanupRoot(root string) ExecutorOption {
	return func(e *Executor) {
		e.cleanupRoot = filepath.Clean(root)
	}
}

// WithProgress calls fn after every operation with the number handled so far.
func WithProgress(fn func(done, total int)) ExecutorOption {
	return func(e *Executor) {
		e.progress = fn
	}
}

// NewExecutor returns an Executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		logger:     logging.Nop(),
		transferer: transfer.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute applies ops in order. Operations that would overwrite an existing
// file are skipped; a failing operation is counted and execution continues.
// In dry-run mode nothing is touched and only skips are counted. ctx is
// checked between operations; the returned error is ctx's.
func (e *Executor) Execute(ctx context.Context, ops []Operation, dryRun bool) (*Result, error) {
	result := &Result{Executed: make([]Outcome, 0, len(ops))}
	sourceDirs := make(map[string]bool)

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if i > 0 {
			e.report(i, len(ops))
		}

		if op.WillOverwrite() {
			e.logger.Warn("executor", "Skipping, destination exists",
				logging.F("source", op.Source),
				logging.F("destination", op.Destination))
			result.Stats.Skipped++
			result.Executed = append(result.Executed, Outcome{Op: op, Status: StatusSkipped, Error: "destination exists"})
			continue
		}

		if dryRun {
			e.logger.Debug("executor", "Dry run",
				logging.F("type", op.Type.String()),
				logging.F("source", op.Source),
				logging.F("destination", op.Destination))
			result.Executed = append(result.Executed, Outcome{Op: op, Status: StatusDryRun})
			continue
		}

		start := time.Now()
		if err := e.apply(op); err != nil {
			e.logger.Error("executor", "Operation failed", err,
				logging.F("type", op.Type.String()),
				logging.F("source", op.Source),
				logging.F("destination", op.Destination))
			result.Stats.Failed++
			result.Errors = append(result.Errors, ExecError{Op: op, Err: err})
			result.Executed = append(result.Executed, Outcome{Op: op, Status: StatusFailed, Error: err.Error(), Duration: time.Since(start)})
			continue
		}
		result.Executed = append(result.Executed, Outcome{Op: op, Status: StatusOK, Duration: time.Since(start)})

		switch op.Type {
		case OpDelete:
			result.Stats.Deleted++
		case OpRename:
			result.Stats.Renamed++
		case OpMove:
			result.Stats.Moved++
			sourceDirs[filepath.Dir(op.Source)] = true
		case OpMoveRename:
			result.Stats.Moved++
			result.Stats.Renamed++
			sourceDirs[filepath.Dir(op.Source)] = true
		}
		e.logger.Info("executor", "Applied",
			logging.F("type", op.Type.String()),
			logging.F("source", op.Source),
			logging.F("destination", op.Destination))
	}

	if len(ops) > 0 {
		e.report(len(ops), len(ops))
	}

	if !dryRun {
		result.CleanedDirs = e.cleanup(sourceDirs)
		result.Stats.Cleaned = len(result.CleanedDirs)
	}
	return result, nil
}

func (e *Executor) report(done, total int) {
	if e.progress != nil {
		e.progress(done, total)
	}
}

func (e *Executor) apply(op Operation) error {
	switch op.Type {
	case OpDelete:
		return os.Remove(op.Source)
	case OpRename, OpMove, OpMoveRename:
		_, err := e.transferer.Move(op.Source, op.Destination)
		return err
	default:
		return fmt.Errorf("unknown operation type %s", op.Type)
	}
}

// cleanup removes folders left empty by moves, deepest first. A folder that
// still holds files is never removed, though empty subfolders inside it are.
func (e *Executor) cleanup(dirs map[string]bool) []string {
	candidates := make([]string, 0, len(dirs))
	for dir := range dirs {
		candidates = append(candidates, dir)
	}
	sortDeepestFirst(candidates)

	var removed []string
	for _, dir := range candidates {
		if e.protected(dir) {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if !isEmptyDir(dir) {
			removed = append(removed, e.removeEmptySubdirs(dir)...)
		}
		for current := dir; !e.protected(current) && isEmptyDir(current); current = filepath.Dir(current) {
			if err := os.Remove(current); err != nil {
				e.logger.Debug("executor", "Unable to remove folder", logging.F("path", current), logging.F("error", err.Error()))
				break
			}
			e.logger.Info("executor", "Removed empty folder", logging.F("path", current))
			removed = append(removed, current)
			if e.cleanupRoot == "" {
				break
			}
		}
	}
	return removed
}

func (e *Executor) removeEmptySubdirs(dir string) []string {
	var subdirs []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() && path != dir {
			subdirs = append(subdirs, path)
		}
		return nil
	})
	sortDeepestFirst(subdirs)

	var removed []string
	for _, sub := range subdirs {
		if isEmptyDir(sub) && os.Remove(sub) == nil {
			e.logger.Info("executor", "Removed empty folder", logging.F("path", sub))
			removed = append(removed, sub)
		}
	}
	return removed
}

// protected reports whether dir is the cleanup root or outside it.
func (e *Executor) protected(dir string) bool {
	if e.cleanupRoot == "" {
		return false
	}
	rel, err := filepath.Rel(e.cleanupRoot, dir)
	return err != nil || rel == "." || strings.HasPrefix(rel, "..")
}

func isEmptyDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) == 0
}

func sortDeepestFirst(dirs []string) {
	sort.Slice(dirs, func(i, j int) bool {
		if len(dirs[i]) != len(dirs[j]) {
			return len(dirs[i]) > len(dirs[j])
		}
		return dirs[i] < dirs[j]
	})
}

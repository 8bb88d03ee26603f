package transfer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// renameFunc is swapped in tests to simulate EXDEV.
var renameFunc = os.Rename

// RenameTransferer moves files with os.Rename.
type RenameTransferer struct{}

func NewRenameTransferer() *RenameTransferer {
	return &RenameTransferer{}
}

func (r *RenameTransferer) Name() string {
	return "rename"
}

func (r *RenameTransferer) Move(src, dst string) (*Result, error) {
	start := time.Now()
	if _, err := checkEndpoints(src, dst); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDestinationNotWritable, err)
	}
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return nil, fmt.Errorf("%w: %s -> %s: %v", ErrCrossDevice, src, dst, err)
		}
		return nil, err
	}
	return &Result{Backend: r.Name(), Duration: time.Since(start), SourceRemoved: true}, nil
}

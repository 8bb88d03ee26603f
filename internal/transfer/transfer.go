// Package transfer moves library files into place. A move is a plain
// os.Rename when source and destination share a filesystem, and falls back to
// copy-then-remove when the kernel reports a cross-device rename (EXDEV).
package transfer

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Common errors returned by transfer operations
var (
	// ErrSourceNotFound is returned when the source file doesn't exist
	ErrSourceNotFound = errors.New("source file not found")

	// ErrDestinationExists is returned when the destination is already present
	ErrDestinationExists = errors.New("destination already exists")

	// ErrDestinationNotWritable is returned when the destination is not writable
	ErrDestinationNotWritable = errors.New("destination not writable")

	// ErrCrossDevice is returned by a rename across filesystems
	ErrCrossDevice = errors.New("cross-device rename")
)

// Result contains details about a completed move.
type Result struct {
	// Backend names the implementation that performed the move
	Backend string

	// BytesCopied is zero for a rename, the file size for a copy
	BytesCopied int64

	Duration time.Duration

	// SourceRemoved indicates whether the source is gone afterwards
	SourceRemoved bool
}

// Transferer moves one file. Implementations never overwrite an existing
// destination and create missing parent directories.
type Transferer interface {
	Move(src, dst string) (*Result, error)
	Name() string
}

// New returns the default transferer: rename first, copy across devices.
func New() Transferer {
	return NewFallbackTransferer(NewRenameTransferer(), NewNativeTransferer(0))
}

func checkEndpoints(src, dst string) (os.FileInfo, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return info, nil
}

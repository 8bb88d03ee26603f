package transfer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const defaultBufferSize = 4 * 1024 * 1024

// NativeTransferer copies the file then removes the source.
type NativeTransferer struct {
	bufferSize int
}

func NewNativeTransferer(bufferSize int) *NativeTransferer {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &NativeTransferer{bufferSize: bufferSize}
}

func (n *NativeTransferer) Name() string {
	return "native"
}

func (n *NativeTransferer) Move(src, dst string) (*Result, error) {
	start := time.Now()
	info, err := checkEndpoints(src, dst)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDestinationNotWritable, err)
	}

	copied, err := n.copyFile(src, dst, info.Mode().Perm())
	if err != nil {
		os.Remove(dst)
		return nil, err
	}

	result := &Result{Backend: n.Name(), BytesCopied: copied, Duration: time.Since(start)}
	if err := os.Remove(src); err != nil {
		return result, fmt.Errorf("copied but failed to remove source: %w", err)
	}
	result.SourceRemoved = true
	return result, nil
}

func (n *NativeTransferer) copyFile(src, dst string, perm os.FileMode) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination: %w", err)
	}
	defer dstFile.Close()

	buf := make([]byte, n.bufferSize)
	copied, err := io.CopyBuffer(dstFile, srcFile, buf)
	if err != nil {
		return copied, fmt.Errorf("copy error: %w", err)
	}
	if err := dstFile.Sync(); err != nil {
		return copied, fmt.Errorf("sync error: %w", err)
	}
	return copied, nil
}

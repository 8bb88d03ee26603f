package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// rotateIfNeeded shifts name.N.ext backups up by one and reopens the log
// once the current file reaches maxSize. Caller holds l.mu.
func (l *Logger) rotateIfNeeded() error {
	if l.file == nil {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < l.maxSize {
		return nil
	}

	l.file.Close()
	l.file = nil
	if err := shiftBackups(l.filePath, l.maxBackups); err != nil {
		return err
	}
	return l.openFile()
}

func shiftBackups(basePath string, maxBackups int) error {
	dir := filepath.Dir(basePath)
	ext := filepath.Ext(basePath)
	name := strings.TrimSuffix(filepath.Base(basePath), ext)
	backupPath := func(n int) string {
		return filepath.Join(dir, fmt.Sprintf("%s.%d%s", name, n, ext))
	}

	nums, err := backupNumbers(dir, name, ext)
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nums)))

	for _, n := range nums {
		if n >= maxBackups {
			os.Remove(backupPath(n))
			continue
		}
		if err := os.Rename(backupPath(n), backupPath(n+1)); err != nil {
			return fmt.Errorf("failed to rotate backup %d: %w", n, err)
		}
	}

	if _, err := os.Stat(basePath); err == nil {
		if err := os.Rename(basePath, backupPath(1)); err != nil {
			return fmt.Errorf("failed to rotate current log: %w", err)
		}
	}
	return nil
}

func backupNumbers(dir, name, ext string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var nums []int
	prefix := name + "."
	for _, entry := range entries {
		fname := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(fname, prefix) || !strings.HasSuffix(fname, ext) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fname, prefix), ext))
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums, nil
}

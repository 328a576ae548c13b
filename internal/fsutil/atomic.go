// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsutil holds small file system helpers.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteFileAtomic replaces path with whatever write produces. The data is
// fsynced before the rename, so readers see either the old or the new file.
// Missing parent directories are created.
func WriteFileAtomic(path string, perm os.FileMode, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		// No-op once the file has been committed.
		if cerr := pendingFile.Cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("cleanup pending file: %w", cerr)
		}
	}()

	if err := write(pendingFile); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace file: %w", err)
	}
	return nil
}

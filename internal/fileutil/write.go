// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/avfs/avfs"
)

// New factory to create a new Writer. A nil restorer skips the security
// context restore.
func New(
	logger *slog.Logger,
	vfs avfs.VFS,
	restorer ContextRestorer,
) *Writer {
	return &Writer{
		logger:   logger,
		fs:       vfs,
		restorer: restorer,
	}
}

// WriteFile writes content to path, creating missing parent directories,
// and then restores the path's security context.
func (w *Writer) WriteFile(
	ctx context.Context,
	path string,
	content []byte,
	opts WriteOptions,
) error {
	mode := opts.Mode
	if mode == 0 {
		mode = DefaultMode
	}

	if opts.CopyMode {
		mode = DefaultMode
		info, err := w.fs.Stat(path)
		switch {
		case err == nil:
			mode = info.Mode().Perm()
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	if err := w.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory of %s: %w", path, err)
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if opts.Append {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	f, err := w.fs.OpenFile(path, flag, mode)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	// OpenFile honors the umask; the requested mode must still apply.
	if err := w.fs.Chmod(path, mode); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}

	w.logger.DebugContext(
		ctx,
		"wrote file",
		slog.String("path", path),
		slog.Int("bytes", len(content)),
		slog.String("mode", fmt.Sprintf("%#o", mode)),
		slog.Bool("append", opts.Append),
	)

	if w.restorer == nil {
		return nil
	}

	if _, err := w.restorer.Restore(ctx, path, false); err != nil {
		return fmt.Errorf("failed to restore security context of %s: %w", path, err)
	}

	return nil
}

// DeleteDirContents removes every entry of dirname, recursing into
// directories. Symlinks are removed, not followed. dirname itself remains.
func (w *Writer) DeleteDirContents(
	ctx context.Context,
	dirname string,
) error {
	entries, err := w.fs.ReadDir(dirname)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dirname, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dirname, entry.Name())
		if err := w.fs.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	w.logger.DebugContext(
		ctx,
		"deleted directory contents",
		slog.String("path", dirname),
		slog.Int("entries", len(entries)),
	)

	return nil
}

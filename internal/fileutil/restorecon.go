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
	"log/slog"

	"github.com/avfs/avfs"

	"github.com/retr0h/osrun/internal/exec"
)

// SELinuxFSPath is the mount point of selinuxfs.
const SELinuxFSPath = "/sys/fs/selinux"

// RestoreconRestorer restores SELinux labels with restorecon.
type RestoreconRestorer struct {
	logger      *slog.Logger
	fs          avfs.VFS
	execManager exec.Manager
}

// NewRestoreconRestorer factory to create a new RestoreconRestorer.
func NewRestoreconRestorer(
	logger *slog.Logger,
	vfs avfs.VFS,
	em exec.Manager,
) *RestoreconRestorer {
	return &RestoreconRestorer{
		logger:      logger,
		fs:          vfs,
		execManager: em,
	}
}

// Restore runs restorecon on path. It reports false without running
// anything when selinuxfs is not mounted, and when restorecon is not
// installed.
func (r *RestoreconRestorer) Restore(
	ctx context.Context,
	path string,
	recursive bool,
) (bool, error) {
	if _, err := r.fs.Stat(SELinuxFSPath); err != nil {
		return false, nil
	}

	argv := []string{"restorecon"}
	if recursive {
		argv = append(argv, "-R")
	}
	argv = append(argv, path)

	_, err := r.execManager.Run(ctx, exec.Request{
		Argv:    argv,
		Capture: true,
	})
	if errors.Is(err, exec.ErrLaunch) {
		r.logger.DebugContext(
			ctx,
			"restorecon unavailable",
			slog.String("path", path),
			slog.Any("error", err),
		)

		return false, nil
	}
	if err != nil {
		return true, fmt.Errorf("restorecon failed: %w", err)
	}

	return true, nil
}

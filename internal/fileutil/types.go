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

// Package fileutil writes files and cleans directories on an abstract
// filesystem.
package fileutil

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/avfs/avfs"
)

// DefaultMode is the permission of files written without an explicit mode.
const DefaultMode fs.FileMode = 0o644

// ContextRestorer restores the security context of a written path.
type ContextRestorer interface {
	// Restore relabels path. It reports false when no security module is
	// enabled.
	Restore(
		ctx context.Context,
		path string,
		recursive bool,
	) (bool, error)
}

// Writer writes files through a VFS.
type Writer struct {
	logger   *slog.Logger
	fs       avfs.VFS
	restorer ContextRestorer
}

// WriteOptions controls a single WriteFile call.
type WriteOptions struct {
	// Mode is the permission of the written file. Zero means DefaultMode.
	Mode fs.FileMode
	// CopyMode keeps the permission of an existing file, ignoring Mode.
	CopyMode bool
	// Append appends to an existing file instead of truncating it.
	Append bool
}

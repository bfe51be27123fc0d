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

package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/avfs/avfs"
)

// ConsolePath is the system console device.
const ConsolePath = "/dev/console"

// Broadcaster writes a message to several sinks at once.
type Broadcaster struct {
	fs     avfs.VFS
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// BroadcastOptions selects the sinks of a single message. The zero value
// writes to stderr and to the console, falling back to stdout.
type BroadcastOptions struct {
	// NoStderr skips standard error.
	NoStderr bool
	// NoConsole skips the system console.
	NoConsole bool
	// NoFallbackToStdout drops the message instead of writing it to
	// standard output when the console cannot be opened.
	NoFallbackToStdout bool
	// Log also emits the message through the logger.
	Log bool
	// Level is the log level. Defaults to debug.
	Level slog.Leveler
}

// NewBroadcaster creates a Broadcaster. A nil logger disables the log sink.
func NewBroadcaster(
	fs avfs.VFS,
	stdout io.Writer,
	stderr io.Writer,
	logger *slog.Logger,
) *Broadcaster {
	return &Broadcaster{
		fs:     fs,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
}

// MultiLog writes text to every selected sink. Sink errors are dropped.
func (b *Broadcaster) MultiLog(
	ctx context.Context,
	text string,
	opts BroadcastOptions,
) {
	if !opts.NoStderr {
		_, _ = io.WriteString(b.stderr, text)
	}

	if !opts.NoConsole {
		if err := b.writeConsole(text); err != nil && !opts.NoFallbackToStdout {
			_, _ = io.WriteString(b.stdout, text)
		}
	}

	if opts.Log && b.logger != nil {
		level := slog.LevelDebug
		if opts.Level != nil {
			level = opts.Level.Level()
		}

		b.logger.Log(ctx, level, strings.TrimSuffix(text, "\n"))
	}
}

func (b *Broadcaster) writeConsole(
	text string,
) error {
	f, err := b.fs.OpenFile(ConsolePath, os.O_WRONLY, 0)
	if err != nil {
		return err
	}

	if _, err := f.Write([]byte(text)); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

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

// Package exec launches external commands, captures their output under a
// decode policy, and reports failures as structured errors.
package exec

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// DefaultShell is the interpreter used for shell requests.
const DefaultShell = "/bin/sh"

// Option configures an Exec.
type Option func(*Exec)

// WithEnviron sets the function returning the baseline environment used by
// inherit and overlay requests.
func WithEnviron(
	fn func() []string,
) Option {
	return func(e *Exec) {
		e.environ = fn
	}
}

// WithLookPath sets the executable resolver used to classify launch failures.
func WithLookPath(
	fn func(file string) (string, error),
) Option {
	return func(e *Exec) {
		e.lookPath = fn
	}
}

// WithStdio sets the streams handed to the child when output is not captured.
func WithStdio(
	stdout io.Writer,
	stderr io.Writer,
) Option {
	return func(e *Exec) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

// WithShell sets the interpreter used for shell requests.
func WithShell(
	shell string,
) Option {
	return func(e *Exec) {
		if shell != "" {
			e.shell = shell
		}
	}
}

// New factory to create a new Exec instance.
func New(
	logger *slog.Logger,
	opts ...Option,
) *Exec {
	e := &Exec{
		logger:   logger,
		environ:  os.Environ,
		lookPath: exec.LookPath,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		shell:    DefaultShell,
		metrics:  newRunMetrics(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

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

package exec

import (
	"context"
	"io"
	"log/slog"
)

// Manager runs external commands.
type Manager interface {
	// Run executes a single command to completion.
	Run(
		ctx context.Context,
		req Request,
	) (*Outcome, error)
	// RunCmdFull executes the provided command with separate stdout and
	// stderr capture, an optional working directory, and a timeout in seconds.
	RunCmdFull(
		name string,
		args []string,
		cwd string,
		timeout int,
	) (*CmdResult, error)
}

// Exec runs commands on the local system.
type Exec struct {
	logger *slog.Logger

	environ  func() []string
	lookPath func(file string) (string, error)
	stdout   io.Writer
	stderr   io.Writer
	shell    string
	metrics  runMetrics
}

// Request describes a single command invocation.
type Request struct {
	// Argv is the command and its arguments. Argv[0] is the executable.
	Argv []string
	// Input is written to the child's stdin, which is then closed.
	// A nil Input closes stdin immediately.
	Input []byte
	// Capture collects stdout and stderr instead of passing the caller's
	// own streams to the child.
	Capture bool
	// Decode controls how captured bytes become text.
	Decode DecodePolicy
	// Env selects how the child's environment is composed.
	Env Environment
	// OnNonZeroExit controls whether a failed exit is returned as an error.
	OnNonZeroExit ExitPolicy
	// AllowedExitCodes are exit codes treated as success. Defaults to 0.
	AllowedExitCodes []int
	// Dir is the optional working directory.
	Dir string
	// Shell runs Argv joined by spaces through the configured shell.
	Shell bool
	// LogString replaces the rendered command in log lines.
	LogString string
}

// ExitPolicy controls the handling of a disallowed exit code.
type ExitPolicy int

const (
	// ExitRaise returns an *ExecutionError on a disallowed exit code.
	ExitRaise ExitPolicy = iota
	// ExitTolerate returns the outcome without an error.
	ExitTolerate
)

// Outcome is the result of a completed invocation.
type Outcome struct {
	// ExitCode is nil when the process was terminated by a signal.
	ExitCode *int
	// Signal names the terminating signal, if any.
	Signal string
	// Stdout is nil unless the request captured output.
	Stdout *Output
	// Stderr is nil unless the request captured output.
	Stderr *Output
	// DurationMs is the wall time of the invocation in milliseconds.
	DurationMs int64

	allowed []int
}

// Succeeded reports whether the process exited with an allowed exit code.
func (o *Outcome) Succeeded() bool {
	if o.ExitCode == nil {
		return false
	}

	return exitAllowed(*o.ExitCode, o.allowed)
}

// CmdResult contains the output of a command execution.
type CmdResult struct {
	// Stdout is the standard output.
	Stdout string
	// Stderr is the standard error output.
	Stderr string
	// ExitCode is the process exit code, -1 when it is unknown.
	ExitCode int
	// DurationMs is the execution time in milliseconds.
	DurationMs int64
}

func exitAllowed(
	code int,
	allowed []int,
) bool {
	if len(allowed) == 0 {
		return code == 0
	}

	for _, rc := range allowed {
		if rc == code {
			return true
		}
	}

	return false
}

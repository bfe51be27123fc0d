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

package command

import (
	"context"

	"github.com/retr0h/osrun/internal/exec"
)

// Provider implements the methods to execute commands on the system.
type Provider interface {
	// Exec executes a command directly without a shell.
	Exec(
		ctx context.Context,
		params ExecParams,
	) (*Result, error)
	// Shell executes a command through /bin/sh -c.
	Shell(
		ctx context.Context,
		params ShellParams,
	) (*Result, error)
}

// Options are the invocation settings shared by Exec and Shell.
type Options struct {
	// Cwd is the optional working directory.
	Cwd string
	// Timeout is the timeout in seconds (0 = no timeout).
	Timeout int `validate:"gte=0"`
	// Input is written to the command's stdin. Nil closes stdin immediately.
	Input []byte
	// Env replaces the inherited environment.
	Env map[string]string `validate:"excluded_with=UpdateEnv,dive,keys,env_key,endkeys"`
	// UpdateEnv is merged over the inherited environment.
	UpdateEnv map[string]string `validate:"dive,keys,env_key,endkeys"`
	// Capture collects stdout and stderr into the result.
	Capture bool
	// Decode controls how captured output becomes text.
	Decode exec.DecodePolicy
	// Tolerate returns a disallowed exit code in the result instead of
	// as an error.
	Tolerate bool
	// AllowedExitCodes are exit codes treated as success (default 0).
	AllowedExitCodes []int
	// LogString replaces the command in log lines.
	LogString string
}

// ExecParams contains parameters for direct command execution.
type ExecParams struct {
	// Command is the executable name or path.
	Command string `validate:"required"`
	// Args are the command arguments.
	Args []string
	Options
}

// ShellParams contains parameters for shell command execution.
type ShellParams struct {
	// Command is the full shell command string.
	Command string `validate:"required"`
	Options
}

// Result contains the output of a command execution.
type Result struct {
	// Stdout is the standard output.
	Stdout string `json:"stdout"`
	// Stderr is the standard error output.
	Stderr string `json:"stderr"`
	// Binary is true when Stdout and Stderr hold undecoded bytes.
	Binary bool `json:"binary"`
	// Captured is false when the command wrote to the caller's streams.
	Captured bool `json:"captured"`
	// ExitCode is the process exit code, -1 when unknown.
	ExitCode int `json:"exit_code"`
	// Signal names the terminating signal, if any.
	Signal string `json:"signal,omitempty"`
	// Succeeded reports whether the exit code was allowed.
	Succeeded bool `json:"succeeded"`
	// DurationMs is the execution time in milliseconds.
	DurationMs int64 `json:"duration_ms"`
}

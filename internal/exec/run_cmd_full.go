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
	"errors"
	"fmt"
	"time"
)

// RunCmdFull executes the provided command with separate stdout and stderr
// capture, an optional working directory, and a timeout in seconds.
// A timeout of 0 defaults to 30 seconds. A non-zero exit code is reported
// in the result rather than as an error.
func (e *Exec) RunCmdFull(
	name string,
	args []string,
	cwd string,
	timeout int,
) (*CmdResult, error) {
	if timeout <= 0 {
		timeout = 30
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	outcome, err := e.Run(ctx, Request{
		Argv:          append([]string{name}, args...),
		Capture:       true,
		Dir:           cwd,
		OnNonZeroExit: ExitTolerate,
	})

	result := &CmdResult{ExitCode: -1}
	if outcome != nil {
		result.Stdout = outputText(outcome.Stdout)
		result.Stderr = outputText(outcome.Stderr)
		result.DurationMs = outcome.DurationMs
		if outcome.ExitCode != nil {
			result.ExitCode = *outcome.ExitCode
		}
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return result, fmt.Errorf("command timed out after %ds", timeout)
		}

		return result, fmt.Errorf("failed to execute command: %w", err)
	}

	return result, nil
}

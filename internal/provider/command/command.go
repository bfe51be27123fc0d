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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/retr0h/osrun/internal/exec"
	"github.com/retr0h/osrun/internal/validation"
)

// Executor implements Provider on top of an exec.Manager.
type Executor struct {
	logger      *slog.Logger
	execManager exec.Manager
}

// New factory to create a new Executor instance.
func New(
	logger *slog.Logger,
	em exec.Manager,
) *Executor {
	return &Executor{
		logger:      logger,
		execManager: em,
	}
}

// run validates params, applies the timeout and executes req.
func (c *Executor) run(
	ctx context.Context,
	params any,
	opts Options,
	req exec.Request,
) (*Result, error) {
	if msg, ok := validation.Struct(params); !ok {
		return nil, fmt.Errorf("invalid command parameters: %s", msg)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.Timeout)*time.Second)
		defer cancel()
	}

	req.Input = opts.Input
	req.Dir = opts.Cwd
	req.Capture = opts.Capture
	req.Decode = opts.Decode
	req.AllowedExitCodes = opts.AllowedExitCodes
	req.LogString = opts.LogString
	req.Env = environment(opts)
	if opts.Tolerate {
		req.OnNonZeroExit = exec.ExitTolerate
	}

	outcome, err := c.execManager.Run(ctx, req)
	if err != nil {
		var execErr *exec.ExecutionError
		if errors.As(err, &execErr) && outcome != nil {
			return newResult(outcome), err
		}

		return nil, fmt.Errorf("command execution failed: %w", err)
	}

	return newResult(outcome), nil
}

// environment selects the environment mode from the options.
func environment(
	opts Options,
) exec.Environment {
	switch {
	case opts.Env != nil:
		return exec.Replace(opts.Env)
	case opts.UpdateEnv != nil:
		return exec.Overlay(opts.UpdateEnv)
	}

	return exec.Inherit()
}

func newResult(
	outcome *exec.Outcome,
) *Result {
	r := &Result{
		ExitCode:   -1,
		Signal:     outcome.Signal,
		Succeeded:  outcome.Succeeded(),
		DurationMs: outcome.DurationMs,
	}

	if outcome.ExitCode != nil {
		r.ExitCode = *outcome.ExitCode
	}

	if outcome.Stdout != nil {
		r.Captured = true
		r.Binary = outcome.Stdout.IsBinary()
		r.Stdout = outcome.Stdout.String()
	}
	if outcome.Stderr != nil {
		r.Stderr = outcome.Stderr.String()
	}

	return r
}

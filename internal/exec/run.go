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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// waitDelay bounds how long Wait blocks on I/O after the child is killed.
const waitDelay = 5 * time.Second

// errEmptyCommand is returned for a request without an executable.
var errEmptyCommand = errors.New("empty command")

var tracer = otel.Tracer("github.com/retr0h/osrun/internal/exec")

// Run executes req and blocks until the child has exited and every captured
// stream has been drained.
//
// A launch failure, a disallowed exit code under ExitRaise and a signal
// termination are returned as *ExecutionError; for the latter two the
// outcome is returned alongside the error. Invalid output under
// DecodeStrict is returned as *DecodeError.
func (e *Exec) Run(
	ctx context.Context,
	req Request,
) (*Outcome, error) {
	argv := e.argv(req)
	cmdString := strings.Join(argv, " ")
	logString := cmdString
	if req.LogString != "" {
		logString = req.LogString
	}
	runID := uuid.NewString()

	ctx, span := tracer.Start(ctx, "exec.Run", trace.WithAttributes(
		attribute.String("exec.run_id", runID),
		attribute.String("exec.command", logString),
		attribute.Bool("exec.capture", req.Capture),
		attribute.String("exec.decode", req.Decode.String()),
		attribute.String("exec.env_mode", req.Env.Mode.String()),
	))
	defer span.End()

	start := time.Now()
	outcome, err := e.run(ctx, req, argv, cmdString)
	duration := time.Since(start)
	if outcome != nil {
		outcome.DurationMs = duration.Milliseconds()
	}

	e.logger.DebugContext(
		ctx,
		"exec run",
		slog.String("run_id", runID),
		slog.String("command", logString),
		slog.String("cwd", req.Dir),
		slog.Bool("capture", req.Capture),
		slog.String("env_mode", req.Env.Mode.String()),
		slog.Any("exit_code", exitCodeAttr(outcome)),
		slog.Int64("duration_ms", duration.Milliseconds()),
		slog.Any("error", err),
	)

	e.record(ctx, outcome, err, duration)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, resultLabel(outcome, err))
	}
	if outcome != nil && outcome.ExitCode != nil {
		span.SetAttributes(attribute.Int("exec.exit_code", *outcome.ExitCode))
	}

	return outcome, err
}

func (e *Exec) run(
	ctx context.Context,
	req Request,
	argv []string,
	cmdString string,
) (*Outcome, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, &ExecutionError{
			Kind:   KindLaunch,
			Reason: errEmptyCommand.Error(),
			Err:    errEmptyCommand,
		}
	}

	path, err := e.lookPath(argv[0])
	if err != nil {
		return nil, launchError(cmdString, err)
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Env = req.Env.Compose(e.environ())
	cmd.Dir = req.Dir
	cmd.WaitDelay = waitDelay

	var stdin io.WriteCloser
	if req.Input != nil {
		if stdin, err = cmd.StdinPipe(); err != nil {
			return nil, launchError(cmdString, err)
		}
	}

	var stdoutPipe, stderrPipe io.ReadCloser
	if req.Capture {
		if stdoutPipe, err = cmd.StdoutPipe(); err != nil {
			return nil, launchError(cmdString, err)
		}
		if stderrPipe, err = cmd.StderrPipe(); err != nil {
			return nil, launchError(cmdString, err)
		}
	} else {
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, launchError(cmdString, err)
	}

	// Closing the read ends unblocks the readers when the caller gives up
	// while a grandchild still holds the write ends open.
	stop := context.AfterFunc(ctx, func() {
		if stdoutPipe != nil {
			_ = stdoutPipe.Close()
			_ = stderrPipe.Close()
		}
	})

	var stdoutBuf, stderrBuf bytes.Buffer
	var g errgroup.Group
	if stdin != nil {
		g.Go(func() error {
			return writeInput(stdin, req.Input)
		})
	}
	if req.Capture {
		g.Go(func() error {
			_, err := io.Copy(&stdoutBuf, stdoutPipe)
			return err
		})
		g.Go(func() error {
			_, err := io.Copy(&stderrBuf, stderrPipe)
			return err
		})
	}

	streamErr := g.Wait()
	waitErr := cmd.Wait()
	stop()

	if ctx.Err() != nil {
		exitCode, signal := exitStatus(cmd.ProcessState)
		return &Outcome{ExitCode: exitCode, Signal: signal, allowed: req.AllowedExitCodes},
			&ExecutionError{
				Kind:        KindSignal,
				Cmd:         cmdString,
				ExitCode:    exitCode,
				Stdout:      partialText(stdoutBuf.Bytes()),
				Stderr:      partialText(stderrBuf.Bytes()),
				Reason:      signalReason(signal, ctx.Err()),
				Description: "Command was canceled.",
				Err:         ctx.Err(),
			}
	}

	if streamErr != nil {
		return nil, fmt.Errorf("failed to transfer command streams: %w", streamErr)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return nil, fmt.Errorf("failed to wait for command: %w", waitErr)
	}

	exitCode, signal := exitStatus(cmd.ProcessState)
	outcome := &Outcome{
		ExitCode: exitCode,
		Signal:   signal,
		allowed:  req.AllowedExitCodes,
	}

	if req.Capture {
		if outcome.Stdout, err = Decode(stdoutBuf.Bytes(), req.Decode, "stdout"); err != nil {
			return nil, err
		}
		if outcome.Stderr, err = Decode(stderrBuf.Bytes(), req.Decode, "stderr"); err != nil {
			return nil, err
		}
	}

	if outcome.Succeeded() {
		return outcome, nil
	}

	if req.OnNonZeroExit == ExitTolerate {
		return outcome, nil
	}

	if signal != "" {
		return outcome, &ExecutionError{
			Kind:   KindSignal,
			Cmd:    cmdString,
			Stdout: outputText(outcome.Stdout),
			Stderr: outputText(outcome.Stderr),
			Reason: signalReason(signal, nil),
			Err:    waitErr,
		}
	}

	return outcome, &ExecutionError{
		Kind:     KindExit,
		Cmd:      cmdString,
		ExitCode: exitCode,
		Stdout:   outputText(outcome.Stdout),
		Stderr:   outputText(outcome.Stderr),
		Reason:   "exited",
		Err:      waitErr,
	}
}

// argv returns the argument vector to execute for req.
func (e *Exec) argv(
	req Request,
) []string {
	if req.Shell && len(req.Argv) > 0 {
		return []string{e.shell, "-c", strings.Join(req.Argv, " ")}
	}

	return req.Argv
}

// writeInput writes data to the child's stdin and closes it. A child that
// exits without reading its input is not an error.
func writeInput(
	w io.WriteCloser,
	data []byte,
) error {
	_, err := w.Write(data)
	closeErr := w.Close()

	if err == nil {
		err = closeErr
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, fs.ErrClosed) {
		return nil
	}

	return err
}

// launchError classifies a failure to start the executable.
func launchError(
	cmd string,
	err error,
) *ExecutionError {
	reason := err.Error()
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		reason = "not found"
	case errors.Is(err, fs.ErrPermission):
		reason = "permission denied"
	}

	return &ExecutionError{
		Kind:   KindLaunch,
		Cmd:    cmd,
		Reason: reason,
		Err:    err,
	}
}

// exitStatus returns the exit code, or the signal name when the process was
// terminated by a signal.
func exitStatus(
	state *os.ProcessState,
) (*int, string) {
	if state == nil {
		return nil, ""
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return nil, ws.Signal().String()
	}

	code := state.ExitCode()
	if code < 0 {
		return nil, ""
	}

	return &code, ""
}

func signalReason(
	signal string,
	ctxErr error,
) string {
	switch {
	case ctxErr != nil && signal != "":
		return fmt.Sprintf("signal: %s (%v)", signal, ctxErr)
	case ctxErr != nil:
		return ctxErr.Error()
	case signal != "":
		return "signal: " + signal
	}

	return "signal"
}

// outputText renders a captured stream for an ExecutionError.
func outputText(
	o *Output,
) string {
	if o == nil {
		return ""
	}

	return o.String()
}

// partialText renders output read before cancellation, replacing invalid
// UTF-8 whatever the request's decode policy.
func partialText(
	b []byte,
) string {
	o, err := Decode(b, DecodeReplace, "")
	if err != nil {
		return string(b)
	}

	return o.String()
}

func exitCodeAttr(
	o *Outcome,
) any {
	if o == nil || o.ExitCode == nil {
		return nil
	}

	return *o.ExitCode
}

// record updates the run metrics.
func (e *Exec) record(
	ctx context.Context,
	outcome *Outcome,
	err error,
	duration time.Duration,
) {
	attrs := metric.WithAttributes(attribute.String("result", resultLabel(outcome, err)))
	e.metrics.runs.Add(ctx, 1, attrs)
	e.metrics.duration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func resultLabel(
	outcome *Outcome,
	err error,
) string {
	var execErr *ExecutionError
	var decodeErr *DecodeError
	switch {
	case errors.As(err, &execErr):
		switch execErr.Kind {
		case KindLaunch:
			return "launch_failure"
		case KindSignal:
			return "signal"
		}
		return "failure"
	case errors.As(err, &decodeErr):
		return "decode_failure"
	case err != nil:
		return "error"
	case outcome != nil && !outcome.Succeeded():
		return "tolerated_failure"
	}

	return "success"
}

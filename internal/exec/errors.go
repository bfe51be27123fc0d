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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultDescription is the description of an ExecutionError that was not
// given one.
const DefaultDescription = "Unexpected error while running command."

// emptyAttr is rendered in place of an absent field.
const emptyAttr = "-"

// Sentinel errors matched by errors.Is against an *ExecutionError.
var (
	// ErrLaunch matches failures to start the executable.
	ErrLaunch = errors.New("command could not be started")
	// ErrNonZeroExit matches commands that exited with a disallowed code.
	ErrNonZeroExit = errors.New("command exited with a disallowed code")
	// ErrSignaled matches commands terminated by a signal.
	ErrSignaled = errors.New("command terminated by signal")
)

// ErrorKind classifies an ExecutionError.
type ErrorKind int

const (
	// KindUnknown is an error built without an observed cause.
	KindUnknown ErrorKind = iota
	// KindLaunch is a failure to start the executable.
	KindLaunch
	// KindExit is a disallowed exit code.
	KindExit
	// KindSignal is a termination by signal.
	KindSignal
)

// ExecutionError describes a failed command invocation. Its Error text is a
// stable multi-line report in which absent fields render as "-".
type ExecutionError struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Cmd is the rendered command line.
	Cmd string
	// ExitCode is nil when unknown.
	ExitCode *int
	// Stdout is the captured standard output, if any.
	Stdout string
	// Stderr is the captured standard error, if any.
	Stderr string
	// Reason is a short observed cause such as "exited" or "not found".
	Reason string
	// Description is a human summary. Defaults to DefaultDescription.
	Description string
	// Err is the underlying error, if any.
	Err error
}

// Error renders the failure report.
func (e *ExecutionError) Error() string {
	description := e.Description
	if description == "" {
		description = DefaultDescription
	}

	exitCode := emptyAttr
	if e.ExitCode != nil {
		exitCode = strconv.Itoa(*e.ExitCode)
	}

	var sb strings.Builder
	sb.WriteString(description)
	writeField(&sb, "Command", e.Cmd)
	writeField(&sb, "Exit code", exitCode)
	writeField(&sb, "Reason", e.Reason)
	writeField(&sb, "Stdout", e.Stdout)
	writeField(&sb, "Stderr", e.Stderr)

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for the failure kind.
func (e *ExecutionError) Is(
	target error,
) bool {
	switch target {
	case ErrLaunch:
		return e.Kind == KindLaunch
	case ErrNonZeroExit:
		return e.Kind == KindExit
	case ErrSignaled:
		return e.Kind == KindSignal
	}

	return false
}

// writeField appends "\nLabel: value". Continuation lines of a multi-line
// value are aligned under the first line.
func writeField(
	sb *strings.Builder,
	label string,
	value string,
) {
	prefix := label + ": "

	value = strings.TrimRight(value, "\n")
	if value == "" {
		value = emptyAttr
	}

	sb.WriteString("\n")
	sb.WriteString(prefix)
	sb.WriteString(IndentText(value, len(prefix)))
}

// IndentText prefixes every line after the first with level spaces. Trailing
// newlines are removed. Byte input yields byte output.
func IndentText[T ~string | ~[]byte](
	text T,
	level int,
) T {
	s := strings.TrimRight(string(text), "\n")

	return T(strings.ReplaceAll(s, "\n", "\n"+strings.Repeat(" ", level)))
}

// DecodeError reports captured output that is not valid UTF-8 under the
// strict decode policy.
type DecodeError struct {
	// Stream is "stdout" or "stderr".
	Stream string
	// Offset is the byte offset of the first invalid sequence.
	Offset int
	// Err is the underlying decoder error.
	Err error
}

// Error returns the error message.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s at byte %d: %v", e.Stream, e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

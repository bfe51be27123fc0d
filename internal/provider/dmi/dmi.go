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

package dmi

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/avfs/avfs"
	"github.com/shirou/gopsutil/v4/host"

	osrunexec "github.com/retr0h/osrun/internal/exec"
)

// dmidecodeTimeout bounds a single dmidecode run, in seconds.
const dmidecodeTimeout = 10

// kernelArchFn reports the machine architecture. It is a package-level
// variable so tests can replace it.
var kernelArchFn = host.KernelArch

// Option configures a Reader.
type Option func(*Reader)

// WithArch overrides the machine architecture as reported by uname.
func WithArch(
	arch string,
) Option {
	return func(r *Reader) {
		r.arch = arch
	}
}

// WithLookPath sets the function used to locate dmidecode.
func WithLookPath(
	fn func(file string) (string, error),
) Option {
	return func(r *Reader) {
		r.lookPath = fn
	}
}

// New factory to create a new Reader.
func New(
	logger *slog.Logger,
	vfs avfs.VFS,
	em osrunexec.Manager,
	opts ...Option,
) *Reader {
	r := &Reader{
		logger:      logger,
		fs:          vfs,
		execManager: em,
		arch:        machineArch(),
		lookPath:    exec.LookPath,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// machineArch returns the kernel architecture, or GOARCH when it cannot
// be determined.
func machineArch() string {
	arch, err := kernelArchFn()
	if err != nil || arch == "" {
		return runtime.GOARCH
	}

	return arch
}

// Keys returns the supported keywords, sorted.
func Keys() []string {
	keys := make([]string, 0, len(sysfsNames))
	for k := range sysfsNames {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}

// Read returns the value of key from sysfs, falling back to dmidecode.
func (r *Reader) Read(
	ctx context.Context,
	key string,
) (string, bool) {
	if value, ok := r.readSysfs(ctx, key); ok {
		return value, true
	}

	if !dmidecodeArches[r.arch] {
		r.logger.DebugContext(
			ctx,
			"dmidecode not supported on architecture",
			slog.String("arch", r.arch),
		)

		return "", false
	}

	path, err := r.lookPath("dmidecode")
	if err != nil {
		r.logger.DebugContext(ctx, "dmidecode not found in PATH")

		return "", false
	}

	return r.readDmidecode(ctx, path, key)
}

func (r *Reader) readSysfs(
	ctx context.Context,
	key string,
) (string, bool) {
	name, ok := sysfsNames[key]
	if !ok {
		return "", false
	}

	path := filepath.Join(SysfsPath, name)
	data, err := r.fs.ReadFile(path)
	if err != nil {
		r.logger.DebugContext(
			ctx,
			"dmi sysfs value unavailable",
			slog.String("path", path),
			slog.Any("error", err),
		)

		return "", false
	}

	// Firmware leaves unset fields filled with 0xff.
	if len(bytes.Trim(bytes.TrimSpace(data), "\xff")) == 0 {
		return "", true
	}

	return strings.TrimSpace(string(data)), true
}

func (r *Reader) readDmidecode(
	ctx context.Context,
	path string,
	key string,
) (string, bool) {
	result, err := r.execManager.RunCmdFull(path, []string{"--quiet", "--string", key}, "", dmidecodeTimeout)
	if err == nil && result.ExitCode != 0 {
		err = fmt.Errorf("dmidecode exited with code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	if err != nil {
		r.logger.DebugContext(
			ctx,
			"dmidecode failed",
			slog.String("key", key),
			slog.Any("error", err),
		)

		return "", false
	}

	value := strings.TrimSpace(result.Stdout)
	if strings.Trim(value, ".") == "" {
		return "", true
	}

	return value, true
}

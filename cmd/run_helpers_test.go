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

package cmd

import (
	"errors"
	"testing"

	"github.com/avfs/avfs"
	"github.com/avfs/avfs/vfs/memfs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/osrun/internal/config"
	"github.com/retr0h/osrun/internal/exec"
	"github.com/retr0h/osrun/internal/provider/command"
)

type RunHelpersTestSuite struct {
	suite.Suite

	fs             *memfs.MemFS
	originalFs     avfs.VFS
	originalConfig config.Config
}

func (suite *RunHelpersTestSuite) SetupTest() {
	suite.originalFs = appFs
	suite.originalConfig = appConfig

	suite.fs = memfs.New()
	suite.Require().NoError(suite.fs.MkdirAll("/etc/osrun", 0o755))
	appFs = suite.fs
	appConfig = config.Config{}
}

func (suite *RunHelpersTestSuite) TearDownTest() {
	appFs = suite.originalFs
	appConfig = suite.originalConfig
}

func (suite *RunHelpersTestSuite) flags(
	args ...string,
) *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addRunFlags(flags)
	suite.Require().NoError(flags.Parse(args))

	return flags
}

func (suite *RunHelpersTestSuite) TestRunOptions() {
	tests := []struct {
		name         string
		args         []string
		setupFunc    func()
		wantErr      string
		validateFunc func(command.Options)
	}{
		{
			name: "when no flags uses configured defaults",
			setupFunc: func() {
				appConfig.Exec.Timeout = 60
				appConfig.Exec.Decode = "strict"
				appConfig.Exec.UpdateEnv = map[string]string{"LANG": "C"}
			},
			validateFunc: func(opts command.Options) {
				suite.Equal(60, opts.Timeout)
				suite.Equal(exec.DecodeStrict, opts.Decode)
				suite.Nil(opts.Env)
				suite.Equal(map[string]string{"LANG": "C"}, opts.UpdateEnv)
				suite.Nil(opts.Input)
			},
		},
		{
			name: "when flags set overrides defaults",
			args: []string{
				"--capture", "--tolerate", "--decode", "off", "--timeout", "0",
				"--cwd", "/tmp", "--rc", "0", "--rc", "3", "--log-string", "secret",
			},
			setupFunc: func() {
				appConfig.Exec.Timeout = 60
			},
			validateFunc: func(opts command.Options) {
				suite.True(opts.Capture)
				suite.True(opts.Tolerate)
				suite.Equal(exec.DecodeOff, opts.Decode)
				suite.Equal(0, opts.Timeout)
				suite.Equal("/tmp", opts.Cwd)
				suite.Equal([]int{0, 3}, opts.AllowedExitCodes)
				suite.Equal("secret", opts.LogString)
			},
		},
		{
			name: "when empty input given closes stdin after no data",
			args: []string{"--input", ""},
			validateFunc: func(opts command.Options) {
				suite.NotNil(opts.Input)
				suite.Empty(opts.Input)
			},
		},
		{
			name: "when input file given reads it",
			args: []string{"--input-file", "/etc/osrun/input"},
			setupFunc: func() {
				suite.Require().NoError(suite.fs.WriteFile("/etc/osrun/input", []byte("data"), 0o644))
			},
			validateFunc: func(opts command.Options) {
				suite.Equal([]byte("data"), opts.Input)
			},
		},
		{
			name:    "when input file missing returns error",
			args:    []string{"--input-file", "/etc/osrun/missing"},
			wantErr: "failed to read input file",
		},
		{
			name:    "when decode invalid returns error",
			args:    []string{"--decode", "latin1"},
			wantErr: "invalid decode policy",
		},
		{
			name: "when env given replaces",
			args: []string{"--env", "FOO=bar", "--env", "EMPTY="},
			setupFunc: func() {
				appConfig.Exec.UpdateEnv = map[string]string{"LANG": "C"}
			},
			validateFunc: func(opts command.Options) {
				suite.Equal(map[string]string{"FOO": "bar", "EMPTY": ""}, opts.Env)
				suite.Nil(opts.UpdateEnv)
			},
		},
		{
			name: "when env file given merges into update-env",
			args: []string{"--env-file", "/etc/osrun/test.env", "--update-env", "FOO=flag"},
			setupFunc: func() {
				suite.Require().NoError(suite.fs.WriteFile(
					"/etc/osrun/test.env", []byte("FOO=file\nBAR=file\n"), 0o644,
				))
			},
			validateFunc: func(opts command.Options) {
				suite.Nil(opts.Env)
				suite.Equal(map[string]string{"FOO": "flag", "BAR": "file"}, opts.UpdateEnv)
			},
		},
		{
			name: "when env file given with env merges into env",
			args: []string{"--env-file", "/etc/osrun/test.env", "--env", "PATH=/bin"},
			setupFunc: func() {
				suite.Require().NoError(suite.fs.WriteFile(
					"/etc/osrun/test.env", []byte("FOO=file\n"), 0o644,
				))
			},
			validateFunc: func(opts command.Options) {
				suite.Equal(map[string]string{"FOO": "file", "PATH": "/bin"}, opts.Env)
				suite.Nil(opts.UpdateEnv)
			},
		},
		{
			name:    "when assignment malformed returns error",
			args:    []string{"--update-env", "NOEQUALS"},
			wantErr: "expected KEY=VALUE",
		},
		{
			name:    "when env file missing returns error",
			args:    []string{"--env-file", "/etc/osrun/missing.env"},
			wantErr: "failed to read env file",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			if tc.setupFunc != nil {
				tc.setupFunc()
			}

			opts, err := runOptions(suite.flags(tc.args...))

			if tc.wantErr != "" {
				suite.Error(err)
				suite.Contains(err.Error(), tc.wantErr)
				return
			}

			suite.NoError(err)
			tc.validateFunc(opts)
		})
	}
}

func (suite *RunHelpersTestSuite) TestResultExitCode() {
	tests := []struct {
		name   string
		result *command.Result
		err    error
		want   int
	}{
		{
			name:   "when succeeded",
			result: &command.Result{Succeeded: true},
			want:   0,
		},
		{
			name:   "when allowed non-zero exit",
			result: &command.Result{ExitCode: 3, Succeeded: true},
			want:   0,
		},
		{
			name:   "when non-zero exit",
			result: &command.Result{ExitCode: 42},
			err:    &exec.ExecutionError{Kind: exec.KindExit},
			want:   42,
		},
		{
			name:   "when tolerated non-zero exit",
			result: &command.Result{ExitCode: 2},
			want:   2,
		},
		{
			name:   "when signaled",
			result: &command.Result{ExitCode: -1, Signal: "killed"},
			err:    &exec.ExecutionError{Kind: exec.KindSignal},
			want:   1,
		},
		{
			name: "when not found",
			err:  &exec.ExecutionError{Kind: exec.KindLaunch, Reason: "not found"},
			want: 127,
		},
		{
			name: "when not executable",
			err:  &exec.ExecutionError{Kind: exec.KindLaunch, Reason: "permission denied"},
			want: 126,
		},
		{
			name: "when decode fails",
			err:  &exec.DecodeError{Stream: "stdout", Err: errors.New("invalid")},
			want: 1,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.want, resultExitCode(tc.result, tc.err))
		})
	}
}

func (suite *RunHelpersTestSuite) TestPropagateTrace() {
	tests := []struct {
		name    string
		enabled bool
		opts    command.Options
		want    command.Options
	}{
		{
			name: "when disabled leaves options unchanged",
			opts: command.Options{},
			want: command.Options{},
		},
		{
			name:    "when enabled without span adds empty overlay",
			enabled: true,
			opts:    command.Options{},
			want:    command.Options{UpdateEnv: map[string]string{}},
		},
		{
			name:    "when enabled keeps replace mode",
			enabled: true,
			opts:    command.Options{Env: map[string]string{"A": "1"}},
			want:    command.Options{Env: map[string]string{"A": "1"}},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			appConfig.Telemetry.Tracing.PropagateEnv = tc.enabled
			opts := tc.opts

			propagateTrace(suite.T().Context(), &opts)

			suite.Equal(tc.want, opts)
		})
	}
}

func (suite *RunHelpersTestSuite) TestApplyMetricsFlag() {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "when shell is given a textfile",
			cmd:      shellCmd,
			value:    "/tmp/osrun-shell.prom",
			wantPath: "/tmp/osrun-shell.prom",
		},
		{
			name:     "when run is given a textfile",
			cmd:      runCmd,
			value:    "/tmp/osrun-run.prom",
			wantPath: "/tmp/osrun-run.prom",
		},
		{
			name:     "when the flag is not set keeps the configured path",
			cmd:      shellCmd,
			wantPath: "/var/lib/node_exporter/osrun.prom",
		},
		{
			name:    "when the textfile lacks the prom suffix",
			cmd:     shellCmd,
			value:   "/tmp/osrun.txt",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			appConfig.Exec.Decode = "replace"
			appConfig.Telemetry.Metrics.Textfile = "/var/lib/node_exporter/osrun.prom"

			f := tc.cmd.Flags().Lookup("metrics-textfile")
			suite.Require().NotNil(f)
			defer func() {
				_ = f.Value.Set("")
				f.Changed = false
			}()
			if tc.value != "" {
				suite.Require().NoError(tc.cmd.Flags().Set("metrics-textfile", tc.value))
			}

			err := applyMetricsFlag(tc.cmd.Flags())

			if tc.wantErr {
				suite.Error(err)
				return
			}
			suite.NoError(err)
			suite.Equal(tc.wantPath, appConfig.Telemetry.Metrics.Textfile)
		})
	}
}

func TestRunHelpersTestSuite(t *testing.T) {
	suite.Run(t, new(RunHelpersTestSuite))
}

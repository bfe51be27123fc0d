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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"

	"github.com/retr0h/osrun/internal/cli"
	"github.com/retr0h/osrun/internal/config"
	"github.com/retr0h/osrun/internal/exec"
	"github.com/retr0h/osrun/internal/provider/command"
	"github.com/retr0h/osrun/internal/telemetry"
)

// Shell exit statuses for commands that could not be started.
const (
	exitNotFound      = 127
	exitNotExecutable = 126
)

// addRunFlags registers the invocation flags shared by run and shell.
func addRunFlags(
	flags *pflag.FlagSet,
) {
	flags.Bool("capture", false, "Capture stdout and stderr instead of passing them through")
	flags.String("decode", "", "Decode policy for captured output: strict, replace, ignore or off")
	flags.String("input", "", "Data written to the command's stdin")
	flags.String("input-file", "", "File whose contents are written to the command's stdin")
	flags.StringArray("env", nil, "Replace the environment with KEY=VALUE (repeatable)")
	flags.StringArray("update-env", nil, "Merge KEY=VALUE over the inherited environment (repeatable)")
	flags.String("env-file", "", "File of KEY=VALUE lines added to --env or --update-env")
	flags.Bool("tolerate", false, "Report a disallowed exit code without failing")
	flags.IntSlice("rc", nil, "Exit codes treated as success (default 0)")
	flags.String("cwd", "", "Working directory for the command")
	flags.Int("timeout", 0, "Timeout in seconds (0 uses the configured default)")
	flags.String("log-string", "", "Text logged in place of the command line")
	flags.Bool("console", false, "Also write failure reports to the system console")
	flags.BoolP("verbose", "v", false, "Print a summary after the command finishes")
	flags.String("metrics-textfile", "", "Write Prometheus metrics to this .prom file on exit")
}

// markRunFlags declares the flag constraints of addRunFlags on cmd.
func markRunFlags(
	cmd *cobra.Command,
) {
	cmd.MarkFlagsMutuallyExclusive("env", "update-env")
	cmd.MarkFlagsMutuallyExclusive("input", "input-file")
}

// runOptions builds the invocation options from flags, falling back to
// the configured defaults.
func runOptions(
	flags *pflag.FlagSet,
) (command.Options, error) {
	var opts command.Options

	opts.Capture, _ = flags.GetBool("capture")
	opts.Tolerate, _ = flags.GetBool("tolerate")
	opts.Cwd, _ = flags.GetString("cwd")
	opts.LogString, _ = flags.GetString("log-string")
	opts.AllowedExitCodes, _ = flags.GetIntSlice("rc")

	opts.Timeout, _ = flags.GetInt("timeout")
	if !flags.Changed("timeout") {
		opts.Timeout = appConfig.Exec.Timeout
	}

	decode, _ := flags.GetString("decode")
	if decode == "" {
		decode = appConfig.Exec.Decode
	}
	policy, err := exec.ParseDecodePolicy(decode)
	if err != nil {
		return opts, err
	}
	opts.Decode = policy

	if flags.Changed("input") {
		input, _ := flags.GetString("input")
		opts.Input = []byte(input)
	}
	if path, _ := flags.GetString("input-file"); path != "" {
		data, err := appFs.ReadFile(path)
		if err != nil {
			return opts, fmt.Errorf("failed to read input file: %w", err)
		}
		opts.Input = data
	}

	if err := runEnvironment(flags, &opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// runEnvironment sets Env or UpdateEnv from flags, the env file and the
// configured defaults.
func runEnvironment(
	flags *pflag.FlagSet,
	opts *command.Options,
) error {
	envFlags, _ := flags.GetStringArray("env")
	updateFlags, _ := flags.GetStringArray("update-env")

	env, err := parseAssignments(envFlags)
	if err != nil {
		return err
	}
	update, err := parseAssignments(updateFlags)
	if err != nil {
		return err
	}

	if path, _ := flags.GetString("env-file"); path != "" {
		fileEnv, err := exec.ParseEnvFile(appFs, path)
		if err != nil {
			return err
		}

		// Flag values win over the file.
		if env != nil {
			env = mergeEnv(fileEnv, env)
		} else {
			update = mergeEnv(fileEnv, update)
		}
	}

	if env == nil && update == nil {
		env = maps.Clone(appConfig.Exec.Env)
		update = maps.Clone(appConfig.Exec.UpdateEnv)
	}

	opts.Env = env
	opts.UpdateEnv = update

	return nil
}

// parseAssignments parses KEY=VALUE pairs. It returns nil for no pairs.
func parseAssignments(
	pairs []string,
) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid environment assignment %q: expected KEY=VALUE", pair)
		}
		env[key] = value
	}

	return env, nil
}

func mergeEnv(
	base map[string]string,
	over map[string]string,
) map[string]string {
	merged := maps.Clone(base)
	maps.Copy(merged, over)

	return merged
}

// applyMetricsFlag points the metrics textfile at --metrics-textfile when
// the executing command was given one.
func applyMetricsFlag(
	flags *pflag.FlagSet,
) error {
	f := flags.Lookup("metrics-textfile")
	if f == nil || !f.Changed {
		return nil
	}

	appConfig.Telemetry.Metrics.Textfile = f.Value.String()

	return config.Validate(&appConfig)
}

// propagateTrace hands the active trace context to the command when
// enabled, overlaying it on an inherited environment.
func propagateTrace(
	ctx context.Context,
	opts *command.Options,
) {
	if !appConfig.Telemetry.Tracing.PropagateEnv {
		return
	}

	switch {
	case opts.Env != nil:
		telemetry.InjectEnv(ctx, opts.Env)
	default:
		if opts.UpdateEnv == nil {
			opts.UpdateEnv = make(map[string]string)
		}
		telemetry.InjectEnv(ctx, opts.UpdateEnv)
	}
}

// execute runs fn under a span and reports its result. Captured streams
// are written only on success; a failure report already carries them.
// The process exit status mirrors the command's.
func execute(
	cmd *cobra.Command,
	spanName string,
	fn func(ctx context.Context) (*command.Result, error),
) {
	ctx, span := otel.Tracer(serviceName).Start(cmd.Context(), spanName)
	defer span.End()

	result, err := fn(ctx)

	verbose, _ := cmd.Flags().GetBool("verbose")
	console, _ := cmd.Flags().GetBool("console")

	switch {
	case jsonOutput && result != nil:
		writeJSON(cmd.OutOrStdout(), result)
	case err == nil && result != nil && result.Captured:
		_, _ = io.WriteString(cmd.OutOrStdout(), result.Stdout)
		_, _ = io.WriteString(cmd.ErrOrStderr(), result.Stderr)
	}

	if verbose && !jsonOutput {
		cli.PrintResult(cmd.ErrOrStderr(), result)
	}

	if err != nil {
		cli.PrintError(cmd.ErrOrStderr(), err)
		if console {
			broadcaster := telemetry.NewBroadcaster(appFs, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
			broadcaster.MultiLog(ctx, err.Error()+"\n", telemetry.BroadcastOptions{
				NoStderr:           true,
				NoFallbackToStdout: true,
				Log:                true,
			})
		}
	}

	exitCode = resultExitCode(result, err)
}

// resultExitCode maps a command result to the process exit status.
func resultExitCode(
	result *command.Result,
	err error,
) int {
	var execErr *exec.ExecutionError
	if errors.As(err, &execErr) && execErr.Kind == exec.KindLaunch {
		if execErr.Reason == "permission denied" {
			return exitNotExecutable
		}

		return exitNotFound
	}

	switch {
	case result != nil && result.Succeeded:
		return 0
	case result != nil && result.ExitCode > 0:
		return result.ExitCode
	case err != nil || result != nil:
		return 1
	}

	return 0
}

func writeJSON(
	w io.Writer,
	v any,
) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("failed to encode result", "error", err)
		return
	}

	_, _ = fmt.Fprintln(w, string(data))
}

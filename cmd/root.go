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
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/avfs/avfs"
	"github.com/avfs/avfs/vfs/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/retr0h/osrun/internal/cli"
	"github.com/retr0h/osrun/internal/config"
	"github.com/retr0h/osrun/internal/exec"
	"github.com/retr0h/osrun/internal/telemetry"
)

// serviceName identifies osrun in traces.
const serviceName = "osrun"

var (
	appConfig  config.Config
	appFs      avfs.VFS = osfs.New()
	logger              = slog.New(slog.NewTextHandler(os.Stderr, nil))
	jsonOutput bool

	// exitCode is the process exit status, set by commands that mirror a
	// child's exit code.
	exitCode    int
	shutdownFns []func(context.Context) error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "osrun",
	Short: "Run external commands with captured output and structured failures.",
	Long: `Run external commands with a composed environment, concurrent capture
of stdout and stderr, configurable decoding, and multi-line failure reports.

┌─┐┌─┐┬─┐┬ ┬┌┐┌
│ │└─┐├┬┘│ ││││
└─┘└─┘┴└─└─┘┘└┘

https://github.com/retr0h/osrun
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyMetricsFlag(cmd.Flags()); err != nil {
			return err
		}

		return initTelemetry(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Join the caller's trace when one is handed down through the environment.
	ctx = telemetry.ExtractEnv(ctx, os.Environ())

	err := rootCmd.ExecuteContext(ctx)
	shutdownTelemetry()

	switch {
	case exitCode != 0:
		cli.Exit(exitCode)
	case err != nil:
		cli.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable or disable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Enable JSON output")

	rootCmd.PersistentFlags().
		StringP("osrun-file", "f", "/etc/osrun/osrun.yaml", "Path to config file")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("osrunFile", rootCmd.PersistentFlags().Lookup("osrun-file"))

	viper.SetDefault("exec.decode", exec.DecodeReplace.String())
	viper.SetDefault("exec.shell", exec.DefaultShell)
	viper.SetDefault("telemetry.tracing.exporter", "none")
}

func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("osrun")
	viper.SetConfigFile(viper.GetString("osrunFile"))

	// Every setting has a default, so the config file is optional.
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cli.LogFatal(logger, "failed to read config", err, "osrunFile", viper.ConfigFileUsed())
	}

	if err := viper.Unmarshal(&appConfig); err != nil {
		cli.LogFatal(logger, "failed to unmarshal config", err, "osrunFile", viper.ConfigFileUsed())
	}

	// Auto-enable tracing in debug mode so trace_id appears in log lines.
	// No exporter is set, just log correlation.
	if appConfig.Debug && !appConfig.Telemetry.Tracing.Enabled {
		appConfig.Telemetry.Tracing.Enabled = true
	}

	err := config.Validate(&appConfig)
	if err != nil {
		cli.LogFatal(logger, "validation failed", err, "osrunFile", viper.ConfigFileUsed())
	}
}

func initLogger() {
	logger = telemetry.NewLogger(os.Stderr, telemetry.LogOptions{
		Debug:   viper.GetBool("debug"),
		JSON:    jsonOutput,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	})
}

func initTelemetry(
	ctx context.Context,
) error {
	shutdownTracer, err := telemetry.InitTracer(ctx, appConfig.Telemetry.Tracing, telemetry.TracerOptions{
		ServiceName:    serviceName,
		ServiceVersion: buildVersion().GitVersion,
	})
	if err != nil {
		return err
	}
	shutdownFns = append(shutdownFns, shutdownTracer)

	meter, err := telemetry.InitMeter(appConfig.Telemetry.Metrics)
	if err != nil {
		return err
	}
	shutdownFns = append(shutdownFns, meter.Shutdown)

	return nil
}

func shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, fn := range shutdownFns {
		if err := fn(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}
	shutdownFns = nil
}

// newExecManager returns the command runner configured from appConfig.
func newExecManager() *exec.Exec {
	return exec.New(logger, exec.WithShell(appConfig.Exec.Shell))
}

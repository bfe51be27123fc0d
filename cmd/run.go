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

	"github.com/spf13/cobra"

	"github.com/retr0h/osrun/internal/provider/command"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- COMMAND [ARGS...]",
	Short: "Execute a command",
	Long: `Execute a command without a shell. The process exits with the
command's exit status, or 127 when it cannot be found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd.Flags())
		if err != nil {
			return err
		}

		provider := command.New(logger, newExecManager())
		execute(cmd, "osrun.run", func(ctx context.Context) (*command.Result, error) {
			propagateTrace(ctx, &opts)

			return provider.Exec(ctx, command.ExecParams{
				Command: args[0],
				Args:    args[1:],
				Options: opts,
			})
		})

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	addRunFlags(runCmd.Flags())
	markRunFlags(runCmd)
}

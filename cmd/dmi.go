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
	"github.com/spf13/cobra"

	"github.com/retr0h/osrun/internal/cli"
	"github.com/retr0h/osrun/internal/provider/dmi"
)

var dmiCmd = &cobra.Command{
	Use:   "dmi [KEY...]",
	Short: "Read hardware identifiers from the DMI table",
	Long: `Read hardware identifiers such as system-uuid from sysfs, falling
back to dmidecode. Without arguments every known key is read.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		keys := args
		if len(keys) == 0 {
			keys = dmi.Keys()
		}

		reader := dmi.New(logger, appFs, newExecManager())

		values := make(map[string]*string, len(keys))
		rows := make([][]string, 0, len(keys))
		missing := 0
		for _, key := range keys {
			value, ok := reader.Read(ctx, key)
			if !ok {
				missing++
				values[key] = nil
				rows = append(rows, []string{key, "-"})
				continue
			}

			values[key] = &value
			rows = append(rows, []string{key, value})
		}

		if jsonOutput {
			writeJSON(cmd.OutOrStdout(), values)
		} else {
			cli.PrintTable(cmd.OutOrStdout(), []string{"key", "value"}, rows)
		}

		// Only an explicit request for a single key fails when it is absent.
		if len(args) == 1 && missing == 1 {
			exitCode = 1
		}
	},
}

func init() {
	rootCmd.AddCommand(dmiCmd)
}

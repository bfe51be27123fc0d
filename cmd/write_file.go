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
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/retr0h/osrun/internal/fileutil"
)

var writeFileCmd = &cobra.Command{
	Use:   "write-file PATH",
	Short: "Write stdin to a file",
	Long: `Write stdin to PATH, creating missing parent directories, then
restore the file's SELinux context when restorecon is available.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		modeFlag, _ := cmd.Flags().GetString("mode")
		copyMode, _ := cmd.Flags().GetBool("copy-mode")
		appendFlag, _ := cmd.Flags().GetBool("append")
		restorecon, _ := cmd.Flags().GetBool("restorecon")

		mode, err := strconv.ParseUint(modeFlag, 8, 32)
		if err != nil {
			return fmt.Errorf("invalid mode %q: %w", modeFlag, err)
		}

		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}

		var restorer fileutil.ContextRestorer
		if restorecon {
			restorer = fileutil.NewRestoreconRestorer(logger, appFs, newExecManager())
		}

		writer := fileutil.New(logger, appFs, restorer)
		return writer.WriteFile(ctx, args[0], content, fileutil.WriteOptions{
			Mode:     fs.FileMode(mode),
			CopyMode: copyMode,
			Append:   appendFlag,
		})
	},
}

func init() {
	rootCmd.AddCommand(writeFileCmd)

	writeFileCmd.Flags().String("mode", "0644", "Permission of the written file, in octal")
	writeFileCmd.Flags().Bool("copy-mode", false, "Keep the permission of an existing file")
	writeFileCmd.Flags().Bool("append", false, "Append instead of truncating")
	writeFileCmd.Flags().Bool("restorecon", true, "Restore the SELinux context after writing")
}

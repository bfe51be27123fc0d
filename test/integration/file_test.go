//go:build integration

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

package integration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type FileSmokeSuite struct {
	suite.Suite

	dir string
}

func (s *FileSmokeSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *FileSmokeSuite) TestWriteFile() {
	path := filepath.Join(s.dir, "nested", "motd")

	_, _, exitCode := runCLI("hello\n", "write-file", "--mode", "0600", path)
	s.Require().Equal(0, exitCode)

	_, _, exitCode = runCLI("world\n", "write-file", "--append", "--copy-mode", path)
	s.Require().Equal(0, exitCode)

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal("hello\nworld\n", string(data))

	info, err := os.Stat(path)
	s.Require().NoError(err)
	s.Equal(os.FileMode(0o600), info.Mode().Perm())
}

func (s *FileSmokeSuite) TestCleanDir() {
	s.Require().NoError(os.MkdirAll(filepath.Join(s.dir, "sub", "deeper"), 0o755))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "file"), []byte("x"), 0o644))

	_, _, exitCode := runCLI("", "clean-dir", s.dir)
	s.Require().Equal(0, exitCode)

	entries, err := os.ReadDir(s.dir)
	s.Require().NoError(err)
	s.Empty(entries)
}

func TestFileSmokeSuite(
	t *testing.T,
) {
	suite.Run(t, new(FileSmokeSuite))
}

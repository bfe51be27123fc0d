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

package exec_test

import (
	"testing"

	"github.com/avfs/avfs/vfs/memfs"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/osrun/internal/exec"
)

type EnvFilePublicTestSuite struct {
	suite.Suite

	fs *memfs.MemFS
}

func (suite *EnvFilePublicTestSuite) SetupTest() {
	suite.fs = memfs.New()
	suite.Require().NoError(suite.fs.MkdirAll("/etc/osrun", 0o755))
}

func (suite *EnvFilePublicTestSuite) TestParseEnvFile() {
	tests := []struct {
		name     string
		content  string
		missing  bool
		want     map[string]string
		wantErr  string
		parseErr bool
	}{
		{
			name:    "key value pairs",
			content: "FOO=bar\nBAZ=qux\n",
			want:    map[string]string{"FOO": "bar", "BAZ": "qux"},
		},
		{
			name:    "comments and blank lines",
			content: "# comment\n\n  \nFOO=bar\n",
			want:    map[string]string{"FOO": "bar"},
		},
		{
			name:    "quoted values",
			content: "A=\"double quoted\"\nB='single quoted'\nC=\"unbalanced'\n",
			want: map[string]string{
				"A": "double quoted",
				"B": "single quoted",
				"C": "\"unbalanced'",
			},
		},
		{
			name:    "export prefix",
			content: "export FOO=bar\n",
			want:    map[string]string{"FOO": "bar"},
		},
		{
			name:    "value containing equals",
			content: "URL=http://x/?a=b\n",
			want:    map[string]string{"URL": "http://x/?a=b"},
		},
		{
			name:    "empty value",
			content: "EMPTY=\n",
			want:    map[string]string{"EMPTY": ""},
		},
		{
			name:     "line without equals",
			content:  "FOO=bar\nnot a pair\n",
			wantErr:  "/etc/osrun/test.env:2",
			parseErr: true,
		},
		{
			name:     "empty key",
			content:  "=value\n",
			wantErr:  "/etc/osrun/test.env:1",
			parseErr: true,
		},
		{
			name:    "missing file",
			missing: true,
			wantErr: "failed to read env file",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			path := "/etc/osrun/test.env"
			if !tc.missing {
				suite.Require().NoError(suite.fs.WriteFile(path, []byte(tc.content), 0o644))
			}

			got, err := exec.ParseEnvFile(suite.fs, path)

			if tc.wantErr != "" {
				suite.Error(err)
				suite.Contains(err.Error(), tc.wantErr)
				if tc.parseErr {
					suite.ErrorIs(err, exec.ErrEnvFileParse)
				}
				suite.Nil(got)
				return
			}

			suite.NoError(err)
			suite.Equal(tc.want, got)
		})
	}
}

func TestEnvFilePublicTestSuite(t *testing.T) {
	suite.Run(t, new(EnvFilePublicTestSuite))
}

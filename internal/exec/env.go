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
	"sort"
	"strings"
)

// EnvMode selects how a child's environment is composed.
type EnvMode int

const (
	// EnvInherit passes the baseline environment unchanged.
	EnvInherit EnvMode = iota
	// EnvReplace passes exactly the given variables.
	EnvReplace
	// EnvOverlay passes the baseline environment with the given variables
	// set on top.
	EnvOverlay
)

// String returns the mode name.
func (m EnvMode) String() string {
	switch m {
	case EnvReplace:
		return "replace"
	case EnvOverlay:
		return "overlay"
	default:
		return "inherit"
	}
}

// Environment is the environment composition of a request. The zero value
// inherits the baseline environment.
type Environment struct {
	Mode EnvMode
	Vars map[string]string
}

// Inherit passes the caller's environment to the child.
func Inherit() Environment {
	return Environment{Mode: EnvInherit}
}

// Replace passes exactly env to the child.
func Replace(
	env map[string]string,
) Environment {
	return Environment{Mode: EnvReplace, Vars: env}
}

// Overlay passes the caller's environment with update merged on top.
func Overlay(
	update map[string]string,
) Environment {
	return Environment{Mode: EnvOverlay, Vars: update}
}

// Compose builds the child's environment from the baseline in KEY=VALUE form.
// Output is sorted by key so the result is stable.
func (e Environment) Compose(
	baseline []string,
) []string {
	merged := make(map[string]string, len(baseline)+len(e.Vars))

	if e.Mode != EnvReplace {
		for _, kv := range baseline {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				continue
			}
			merged[k] = v
		}
	}

	if e.Mode != EnvInherit {
		for k, v := range e.Vars {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}

	return env
}

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
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodePolicy controls how captured bytes are turned into text. The zero
// value is DecodeReplace.
type DecodePolicy int

const (
	// DecodeReplace substitutes U+FFFD for invalid UTF-8.
	DecodeReplace DecodePolicy = iota
	// DecodeStrict fails with a *DecodeError on invalid UTF-8.
	DecodeStrict
	// DecodeIgnore drops invalid UTF-8.
	DecodeIgnore
	// DecodeOff returns the captured bytes unchanged.
	DecodeOff
)

// String returns the policy name.
func (p DecodePolicy) String() string {
	switch p {
	case DecodeStrict:
		return "strict"
	case DecodeIgnore:
		return "ignore"
	case DecodeOff:
		return "off"
	default:
		return "replace"
	}
}

// ParseDecodePolicy parses a policy name. "true" is an alias for replace and
// "false" for off.
func ParseDecodePolicy(
	s string,
) (DecodePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace", "true":
		return DecodeReplace, nil
	case "strict":
		return DecodeStrict, nil
	case "ignore":
		return DecodeIgnore, nil
	case "off", "false":
		return DecodeOff, nil
	}

	return DecodeReplace, fmt.Errorf("invalid decode policy: %q", s)
}

// Output is a captured stream, holding either decoded text or raw bytes.
type Output struct {
	text   string
	raw    []byte
	binary bool
}

// TextOutput returns an Output holding text.
func TextOutput(
	s string,
) *Output {
	return &Output{text: s}
}

// BytesOutput returns an Output holding raw bytes.
func BytesOutput(
	b []byte,
) *Output {
	if b == nil {
		b = []byte{}
	}

	return &Output{raw: b, binary: true}
}

// IsBinary reports whether the output holds undecoded bytes.
func (o *Output) IsBinary() bool {
	return o.binary
}

// String returns the text, or the raw bytes converted without decoding.
func (o *Output) String() string {
	if o.binary {
		return string(o.raw)
	}

	return o.text
}

// Bytes returns the raw bytes, or the text encoded as UTF-8.
func (o *Output) Bytes() []byte {
	if o.binary {
		return o.raw
	}

	return []byte(o.text)
}

// Decode converts b to an Output under the policy. stream names the source
// in a *DecodeError.
func Decode(
	b []byte,
	policy DecodePolicy,
	stream string,
) (*Output, error) {
	switch policy {
	case DecodeOff:
		return BytesOutput(b), nil
	case DecodeStrict:
		if _, n, err := transform.Bytes(encoding.UTF8Validator, b); err != nil {
			return nil, &DecodeError{Stream: stream, Offset: n, Err: err}
		}

		return TextOutput(string(b)), nil
	case DecodeIgnore:
		return TextOutput(dropInvalid(b)), nil
	default:
		if utf8.Valid(b) {
			return TextOutput(string(b)), nil
		}

		s, err := unicode.UTF8.NewDecoder().Bytes(b)
		if err != nil {
			return nil, &DecodeError{Stream: stream, Err: err}
		}

		return TextOutput(string(s)), nil
	}
}

// dropInvalid returns b as text with every invalid UTF-8 byte removed.
func dropInvalid(
	b []byte,
) string {
	var sb strings.Builder
	sb.Grow(len(b))

	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.Write(b[:size])
		}
		b = b[size:]
	}

	return sb.String()
}

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

package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Compile-time check that envCarrier satisfies the TextMapCarrier interface.
var _ propagation.TextMapCarrier = envCarrier{}

// envCarrier implements propagation.TextMapCarrier over environment
// variables. Keys are stored upper-cased, so "traceparent" is carried as
// TRACEPARENT.
type envCarrier struct {
	data map[string]string
}

// Get returns the value for the key.
func (c envCarrier) Get(
	key string,
) string {
	return c.data[strings.ToUpper(key)]
}

// Set stores a key-value pair.
func (c envCarrier) Set(
	key string,
	value string,
) {
	c.data[strings.ToUpper(key)] = value
}

// Keys returns all keys in the carrier, lower-cased.
func (c envCarrier) Keys() []string {
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, strings.ToLower(k))
	}

	return keys
}

// InjectEnv adds the current span's trace context to env as TRACEPARENT
// and TRACESTATE. If there is no active span, env is unchanged.
func InjectEnv(
	ctx context.Context,
	env map[string]string,
) {
	otel.GetTextMapPropagator().Inject(ctx, envCarrier{data: env})
}

// ExtractEnv returns a context carrying the remote span context found in
// environ, a list of KEY=VALUE entries. If none is present, ctx is returned
// unchanged.
func ExtractEnv(
	ctx context.Context,
	environ []string,
) context.Context {
	data := make(map[string]string)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		switch upper := strings.ToUpper(k); upper {
		case "TRACEPARENT", "TRACESTATE":
			data[upper] = v
		}
	}

	return otel.GetTextMapPropagator().Extract(ctx, envCarrier{data: data})
}

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

package telemetry_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/retr0h/osrun/internal/config"
	"github.com/retr0h/osrun/internal/telemetry"
)

type TelemetryPublicTestSuite struct {
	suite.Suite

	ctx context.Context
}

func (s *TelemetryPublicTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *TelemetryPublicTestSuite) TestInitTracer() {
	tests := []struct {
		name          string
		cfg           config.TracingConfig
		expectErr     bool
		errContains   string
		wantValidSpan bool
	}{
		{
			name:          "when disabled installs noop provider",
			cfg:           config.TracingConfig{Enabled: false},
			wantValidSpan: false,
		},
		{
			name:          "when enabled without exporter creates spans",
			cfg:           config.TracingConfig{Enabled: true, Exporter: "none"},
			wantValidSpan: true,
		},
		{
			name:          "when enabled with empty exporter creates spans",
			cfg:           config.TracingConfig{Enabled: true},
			wantValidSpan: true,
		},
		{
			name:        "when exporter is unsupported returns error",
			cfg:         config.TracingConfig{Enabled: true, Exporter: "zipkin"},
			expectErr:   true,
			errContains: "unsupported tracing exporter",
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			shutdown, err := telemetry.InitTracer(s.ctx, tc.cfg, telemetry.TracerOptions{ServiceName: "osrun"})

			if tc.expectErr {
				s.Error(err)
				s.Contains(err.Error(), tc.errContains)
				s.Nil(shutdown)
				return
			}

			s.NoError(err)
			s.NotNil(shutdown)

			_, span := otel.Tracer("test").Start(s.ctx, "test-span")
			s.Equal(tc.wantValidSpan, span.SpanContext().IsValid())
			span.End()

			s.NoError(shutdown(s.ctx))
		})
	}
}

func (s *TelemetryPublicTestSuite) TestInitTracerResource() {
	tests := []struct {
		name         string
		cfg          config.TracingConfig
		opts         telemetry.TracerOptions
		validateFunc func(attrs map[attribute.Key]attribute.Value)
	}{
		{
			name: "when config names no service uses the default",
			cfg:  config.TracingConfig{Enabled: true},
			opts: telemetry.TracerOptions{ServiceName: "osrun", ServiceVersion: "v1.2.3"},
			validateFunc: func(attrs map[attribute.Key]attribute.Value) {
				s.Equal("osrun", attrs["service.name"].AsString())
				s.Equal("v1.2.3", attrs["service.version"].AsString())
				s.NotEmpty(attrs["host.name"].AsString())
				s.NotZero(attrs["process.pid"].AsInt64())
			},
		},
		{
			name: "when config sets service name and attributes",
			cfg: config.TracingConfig{
				Enabled:     true,
				ServiceName: "provisioner",
				Attributes:  map[string]string{"deployment.environment": "lab"},
			},
			opts: telemetry.TracerOptions{ServiceName: "osrun"},
			validateFunc: func(attrs map[attribute.Key]attribute.Value) {
				s.Equal("provisioner", attrs["service.name"].AsString())
				s.Equal("lab", attrs["deployment.environment"].AsString())
				_, ok := attrs["service.version"]
				s.False(ok)
			},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			shutdown, err := telemetry.InitTracer(s.ctx, tc.cfg, tc.opts)
			s.Require().NoError(err)
			defer func() { s.NoError(shutdown(s.ctx)) }()

			_, span := otel.Tracer("test").Start(s.ctx, "test-span")
			defer span.End()

			ro, ok := span.(sdktrace.ReadOnlySpan)
			s.Require().True(ok)

			attrs := make(map[attribute.Key]attribute.Value)
			for _, kv := range ro.Resource().Attributes() {
				attrs[kv.Key] = kv.Value
			}
			tc.validateFunc(attrs)
		})
	}
}

func (s *TelemetryPublicTestSuite) TestInitTracerStdoutWriter() {
	var buf bytes.Buffer

	shutdown, err := telemetry.InitTracer(
		s.ctx,
		config.TracingConfig{Enabled: true, Exporter: "stdout"},
		telemetry.TracerOptions{ServiceName: "osrun", Writer: &buf},
	)
	s.Require().NoError(err)

	_, span := otel.Tracer("test").Start(s.ctx, "exported-span")
	span.End()

	s.Require().NoError(shutdown(s.ctx))
	s.Contains(buf.String(), "exported-span")
}

func TestTelemetryPublicTestSuite(t *testing.T) {
	suite.Run(t, new(TelemetryPublicTestSuite))
}

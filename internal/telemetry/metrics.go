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
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/retr0h/osrun/internal/config"
)

// prometheusNewFn is the function used to create Prometheus exporters.
// It is a package-level variable so tests can replace it to simulate errors.
var prometheusNewFn = otelprom.New

// Meter owns the process meter provider and its Prometheus registry.
type Meter struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
	textfile string
}

// InitMeter initializes the OpenTelemetry meter provider with a Prometheus
// exporter bound to a private registry and installs it globally.
func InitMeter(
	cfg config.MetricsConfig,
) (*Meter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := prometheusNewFn(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)

	return &Meter{
		registry: registry,
		provider: mp,
		textfile: cfg.Textfile,
	}, nil
}

// Gatherer returns the registry holding the exported metrics.
func (m *Meter) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current metrics in the node_exporter textfile
// format. The file is replaced atomically.
func (m *Meter) WriteTextfile(
	path string,
) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}

	return nil
}

// Shutdown writes the configured textfile, if any, and stops the provider.
func (m *Meter) Shutdown(
	ctx context.Context,
) error {
	var errs []error
	if m.textfile != "" {
		errs = append(errs, m.WriteTextfile(m.textfile))
	}
	errs = append(errs, m.provider.Shutdown(ctx))

	return errors.Join(errs...)
}

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
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// runMetrics holds the instruments recorded for every Run.
type runMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

// newRunMetrics creates the run instruments from the global meter provider.
// Instruments fall back to no-ops when they cannot be created.
func newRunMetrics() runMetrics {
	meter := otel.Meter("github.com/retr0h/osrun/internal/exec")

	runs, err := meter.Int64Counter(
		"osrun.exec.runs",
		metric.WithDescription("Number of external command invocations by result."),
	)
	if err != nil {
		runs = noop.Int64Counter{}
	}

	duration, err := meter.Float64Histogram(
		"osrun.exec.duration",
		metric.WithDescription("Wall time of external command invocations."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		duration = noop.Float64Histogram{}
	}

	return runMetrics{runs: runs, duration: duration}
}

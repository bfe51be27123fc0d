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

package config

// Config represents the root structure of the YAML configuration file.
// This struct is used to unmarshal configuration data from Viper.
type Config struct {
	Exec      Exec      `mapstructure:"exec"`
	Telemetry Telemetry `mapstructure:"telemetry"`
	// Debug enable or disable debug option set from CLI.
	Debug bool `mapstructure:"debug"`
}

// Exec configuration settings applied to every command invocation unless a
// flag overrides them.
type Exec struct {
	// Decode is the default decode policy: strict, replace, ignore or off.
	Decode string `mapstructure:"decode"     validate:"decode_policy"`
	// Timeout is the default timeout in seconds (0 = no timeout).
	Timeout int `mapstructure:"timeout"    validate:"gte=0,lte=86400"`
	// Shell is the interpreter used by the shell command.
	Shell string `mapstructure:"shell"      validate:"omitempty,startswith=/"`
	// Env replaces the inherited environment of every command.
	Env map[string]string `mapstructure:"env"        validate:"excluded_with=UpdateEnv,dive,keys,env_key,endkeys"`
	// UpdateEnv is merged over the inherited environment of every command.
	UpdateEnv map[string]string `mapstructure:"update_env" validate:"dive,keys,env_key,endkeys"`
}

// Telemetry configuration settings.
type Telemetry struct {
	Tracing TracingConfig `mapstructure:"tracing,omitempty"`
	Metrics MetricsConfig `mapstructure:"metrics,omitempty"`
}

// MetricsConfig configuration settings for Prometheus metrics.
type MetricsConfig struct {
	// Textfile is the path a Prometheus text-format snapshot is written to
	// after each invocation, for the node_exporter textfile collector.
	// Empty disables the snapshot.
	Textfile string `mapstructure:"textfile" validate:"omitempty,endswith=.prom"`
}

// TracingConfig configuration settings for distributed tracing.
type TracingConfig struct {
	// Enabled enables or disables tracing.
	Enabled bool `mapstructure:"enabled"`
	// Exporter selects the trace exporter: "stdout" or "otlp".
	Exporter string `mapstructure:"exporter"      validate:"omitempty,oneof=none stdout otlp"`
	// OTLPEndpoint is the gRPC endpoint for the OTLP exporter (e.g., "localhost:4317").
	OTLPEndpoint string `mapstructure:"otlp_endpoint" validate:"required_if=Exporter otlp"`
	// PropagateEnv exports the trace context to commands as TRACEPARENT.
	PropagateEnv bool `mapstructure:"propagate_env"`
	// ServiceName replaces "osrun" as the service.name resource attribute,
	// so runs from different callers can be told apart.
	ServiceName string `mapstructure:"service_name"`
	// Attributes are extra resource attributes attached to every span,
	// e.g. deployment.environment.
	Attributes map[string]string `mapstructure:"attributes"    validate:"dive,keys,required,endkeys"`
}

// Package telemetry installs a process-wide OpenTelemetry tracer used to
// wrap every MCP tool invocation in a span. Call sites must tolerate the
// no-op tracer returned before Init is called.
package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/emergent-company/compliance-mcp"

var (
	mu     sync.RWMutex
	tracer trace.Tracer = otel.Tracer(instrumentationName) // no-op until a real provider is installed
)

// Config selects how the process-wide tracer is constructed.
type Config struct {
	// ServiceName is recorded as the tracer's instrumentation scope name.
	// Empty uses the default compliance-mcp scope name.
	ServiceName string
}

// Init installs the process-wide tracer, sourced from whatever
// go.opentelemetry.io/otel global TracerProvider is configured (via
// otel.SetTracerProvider, typically done by an OTLP exporter bootstrap
// elsewhere in the process). Safe to call multiple times; the last call
// wins. Never returns an error: an unconfigured global provider yields
// otel's built-in no-op tracer, which every call site must already
// tolerate.
func Init(cfg Config) {
	name := cfg.ServiceName
	if name == "" {
		name = instrumentationName
	}
	mu.Lock()
	defer mu.Unlock()
	tracer = otel.Tracer(name)
}

// Get returns the installed tracer, or a no-op tracer if Init was never
// called. Never nil.
func Get() trace.Tracer {
	mu.RLock()
	defer mu.RUnlock()
	return tracer
}

// Reset restores the default no-op tracer. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	tracer = otel.Tracer(instrumentationName)
}

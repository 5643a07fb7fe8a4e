package tracing

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), DefaultConfig("catalog"))
	if err != nil {
		t.Fatalf("InitTracer(disabled) returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown(disabled) returned error: %v", err)
	}
}

func TestInitTracer_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := DefaultConfig("catalog")
	cfg.Enabled = true
	cfg.OTLPEndpoint = "127.0.0.1:0"

	shutdown, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitTracer(enabled) returned error: %v", err)
	}

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected *sdktrace.TracerProvider, got %T", otel.GetTracerProvider())
	}

	// The endpoint is unreachable; shutdown may report a flush failure.
	_ = shutdown(context.Background())
}

func TestSampler(t *testing.T) {
	cases := map[float64]string{
		1.5:  "AlwaysOnSampler",
		1.0:  "AlwaysOnSampler",
		0.0:  "AlwaysOffSampler",
		-1.0: "AlwaysOffSampler",
		0.25: "TraceIDRatioBased",
	}
	for rate, want := range cases {
		desc := Sampler(rate).Description()
		if !strings.HasPrefix(desc, "ParentBased") || !strings.Contains(desc, want) {
			t.Errorf("Sampler(%v).Description() = %q, want ParentBased with %s", rate, desc, want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("catalog")
	if cfg.ServiceName != "catalog" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "catalog")
	}
	if cfg.Enabled {
		t.Error("default config should be disabled")
	}
	if cfg.OTLPEndpoint != "localhost:4318" {
		t.Errorf("OTLPEndpoint = %q", cfg.OTLPEndpoint)
	}
}

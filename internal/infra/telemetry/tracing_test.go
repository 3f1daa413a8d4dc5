package telemetry

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/casting-agency/internal/infra/config"
)

func TestNewTracerProviderRequiresEndpoint(t *testing.T) {
	_, err := NewTracerProvider(context.Background(), config.TelemetrySettings{ServiceName: "casting-agency"}, "test", zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("expected error without an otlp endpoint")
	}
}

func TestNewTracerProviderLifecycle(t *testing.T) {
	cfg := config.TelemetrySettings{
		OTLPEndpoint: "localhost:4318",
		ServiceName:  "casting-agency",
		SamplingRate: 1,
	}

	tp, err := NewTracerProvider(context.Background(), cfg, "test", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewTracerProvider returned error: %v", err)
	}

	if tp.Tracer("casting-test") == nil {
		t.Fatal("expected tracer instance")
	}

	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}

func TestSamplerFor(t *testing.T) {
	cases := map[float64]string{
		1:    "AlwaysOnSampler",
		0:    "AlwaysOffSampler",
		0.25: "TraceIDRatioBased{0.25}",
	}
	for rate, want := range cases {
		if got := samplerFor(rate).Description(); !strings.Contains(got, want) {
			t.Fatalf("samplerFor(%v) = %q, want it to contain %q", rate, got, want)
		}
	}
}

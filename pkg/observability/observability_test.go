package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInitMetrics_Disabled(t *testing.T) {
	m, err := InitMetrics(context.Background(), MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("InitMetrics() error = %v", err)
	}
	if m == nil {
		t.Fatal("InitMetrics() returned nil recorder")
	}

	// Zero-value recorder must tolerate every call.
	ctx := context.Background()
	m.RecordSessionTurn(ctx, time.Second, nil)
	m.RecordSessionTurn(ctx, time.Second, errors.New("boom"))
	m.RecordToolExecution(ctx, "search", time.Millisecond, nil)
	m.RecordLLMCall(ctx, "gpt-4o", time.Second, 100, 50, nil)
	m.RecordIngestion(ctx, "uploads", 3)
}

func TestInitGlobalTracer_Disabled(t *testing.T) {
	tp, err := InitGlobalTracer(context.Background(), TracerConfig{Enabled: false})
	if err != nil {
		t.Fatalf("InitGlobalTracer() error = %v", err)
	}
	if tp == nil {
		t.Fatal("InitGlobalTracer() returned nil provider")
	}

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	span.End()
}

func TestGlobalMetricsAccessors(t *testing.T) {
	defer SetGlobalMetrics(nil)

	if got := GetGlobalMetrics(); got != nil {
		t.Errorf("GetGlobalMetrics() before set = %v, want nil", got)
	}

	m := &PrometheusMetrics{}
	SetGlobalMetrics(m)
	if got := GetGlobalMetrics(); got != Metrics(m) {
		t.Errorf("GetGlobalMetrics() = %v, want %v", got, m)
	}
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findMetric(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	t.Fatalf("metric %s not registered", name)
	return nil
}

func TestLedgerMetricsRecordsOutcomes(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewLedgerMetrics(registry)

	m.IncSuccess("deposit")
	m.IncSuccess("deposit")
	m.IncFailure("transfer")
	m.ObserveDuration("deposit", 150*time.Millisecond)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}

	success := findMetric(t, families, "ledger_operation_success")
	if got := success.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("success counter = %v, want 2", got)
	}
	if label := success.GetMetric()[0].GetLabel()[0]; label.GetName() != "operation" || label.GetValue() != "deposit" {
		t.Fatalf("unexpected label %s=%s", label.GetName(), label.GetValue())
	}

	failure := findMetric(t, families, "ledger_operation_failure")
	if got := failure.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("failure counter = %v, want 1", got)
	}

	duration := findMetric(t, families, "ledger_operation_duration_seconds")
	if got := duration.GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
		t.Fatalf("histogram sample count = %v, want 1", got)
	}
}

func TestLedgerMetricsNilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *LedgerMetrics
	m.IncSuccess("deposit")
	m.IncFailure("deposit")
	m.ObserveDuration("deposit", time.Second)

	unregistered := NewLedgerMetrics(nil)
	unregistered.IncSuccess("deposit")
}

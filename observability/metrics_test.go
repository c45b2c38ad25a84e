package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m.InvocationsTotal == nil {
		t.Fatal("InvocationsTotal should not be nil")
	}
	if m.TargetOutcomesTotal == nil {
		t.Fatal("TargetOutcomesTotal should not be nil")
	}
	if m.TargetLatency == nil {
		t.Fatal("TargetLatency should not be nil")
	}
	if m.FanoutTargets == nil {
		t.Fatal("FanoutTargets should not be nil")
	}
}

func TestRecordOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordOutcome(OutcomeSuccess, 0.5)
	m.RecordOutcome(OutcomeSuccess, 1.2)
	m.RecordOutcome(OutcomeTransportError, 5.0)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		switch f.GetName() {
		case "fanrelay_target_outcomes_total":
			found = true
			if len(f.GetMetric()) != 2 { // success + transport_error
				t.Fatalf("expected 2 label combinations, got %d", len(f.GetMetric()))
			}
		case "fanrelay_target_latency_seconds":
			if got := f.GetMetric()[0].GetHistogram().GetSampleCount(); got != 3 {
				t.Fatalf("expected 3 latency samples, got %d", got)
			}
		}
	}
	if !found {
		t.Fatal("fanrelay_target_outcomes_total metric not found")
	}
}

func TestRecordInvocation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordInvocation("POST", "ok")
	m.RecordInvocation("POST", "ok")
	m.RecordInvocation("POST", "all_failed")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, f := range families {
		if f.GetName() != "fanrelay_invocations_total" {
			continue
		}
		counts := map[string]float64{}
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "result" {
					counts[lp.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
		if counts["ok"] != 2 || counts["all_failed"] != 1 {
			t.Fatalf("unexpected counts: %v", counts)
		}
		return
	}
	t.Fatal("fanrelay_invocations_total metric not found")
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	NewMetrics(reg)
}

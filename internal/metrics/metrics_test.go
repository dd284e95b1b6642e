package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue はレジストリから指定メトリクスのカウンタ値を取得する。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) (float64, bool) {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total, true
		}
	}
	return 0, false
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordFortuneGenerated_IncrementsCounterPerCard はカード別カウンタが増加することを検証する。
func TestRecordFortuneGenerated_IncrementsCounterPerCard(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFortuneGenerated("The Moon")
	c.RecordFortuneGenerated("The Moon")
	c.RecordFortuneGenerated("Death")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "uranai_fortunes_generated_total" {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 2 {
			t.Fatalf("expected 2 card labels, got %d", len(mf.GetMetric()))
		}
		for _, m := range mf.GetMetric() {
			card := m.GetLabel()[0].GetValue()
			val := m.GetCounter().GetValue()
			switch card {
			case "The Moon":
				if val != 2 {
					t.Errorf("The Moon count = %v, want 2", val)
				}
			case "Death":
				if val != 1 {
					t.Errorf("Death count = %v, want 1", val)
				}
			default:
				t.Errorf("unexpected card label %q", card)
			}
		}
	}
	if !found {
		t.Error("uranai_fortunes_generated_total metric not found")
	}
}

// TestRecordGenerationFailure_IncrementsCounter は生成失敗カウンタが増加することを検証する。
func TestRecordGenerationFailure_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGenerationFailure()

	val, found := counterValue(t, reg, "uranai_generation_failures_total")
	if !found {
		t.Fatal("uranai_generation_failures_total metric not found")
	}
	if val != 1 {
		t.Errorf("generation_failures_total = %v, want 1", val)
	}
}

// TestRecordGenerationLatency_ObservesHistogram はレイテンシがヒストグラムに記録されることを検証する。
func TestRecordGenerationLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGenerationLatency(150 * time.Millisecond)
	c.RecordGenerationLatency(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "uranai_generation_latency_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample count = %d, want 2", h.GetSampleCount())
			}
		}
	}
	if !found {
		t.Error("uranai_generation_latency_seconds metric not found")
	}
}

// TestRecordHTTPRequest_IncrementsCounter はHTTPリクエストカウンタが増加することを検証する。
func TestRecordHTTPRequest_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("POST", "/api/fortune", 200)
	c.RecordHTTPRequest("POST", "/api/fortune", 200)
	c.RecordHTTPRequest("GET", "/api/fortunes", 500)

	val, found := counterValue(t, reg, "uranai_http_requests_total")
	if !found {
		t.Fatal("uranai_http_requests_total metric not found")
	}
	if val != 3 {
		t.Errorf("http_requests_total = %v, want 3", val)
	}
}

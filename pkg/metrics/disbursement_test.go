package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestDisbursementMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewDisbursementMetrics(reg)

	metrics.ObserveDuration("completed", 250*time.Millisecond)
	metrics.IncTransaction("completed")
	metrics.IncPayout("card", "settled")
	metrics.IncPayout("card", "failed")
	metrics.IncRejected()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "disbursement_transactions_total", "status", "completed"); err != nil {
		t.Fatalf("fetch transactions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transactions=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "disbursement_payouts_total", "outcome", "failed"); err != nil {
		t.Fatalf("fetch payouts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed payouts=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "disbursement_duration_seconds", "status", "completed"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestDisbursementMetricsNilSafe(t *testing.T) {
	var metrics *DisbursementMetrics
	metrics.IncTransaction("completed")
	metrics.IncPayout("card", "settled")
	metrics.IncRejected()
	metrics.ObserveDuration("completed", time.Second)

	empty := NewDisbursementMetrics(nil)
	empty.IncTransaction("failed")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

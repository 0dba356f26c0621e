package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	if m.namespace != "envsentry" {
		t.Errorf("expected namespace envsentry, got %s", m.namespace)
	}
	if m.subsystem != "core" {
		t.Errorf("expected subsystem core, got %s", m.subsystem)
	}
	if !m.enabled {
		t.Error("expected metrics enabled by default")
	}
	if m.refreshInterval != defaultRefreshInterval {
		t.Errorf("expected refresh interval %v, got %v", defaultRefreshInterval, m.refreshInterval)
	}
}

func TestNewManagerOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(
		WithPrometheusRegistry(reg),
		WithNamespace("custom"),
		WithSubsystem("testing"),
		WithHistogramBuckets([]float64{1, 5, 10}),
		WithMetricsEnabled(false),
		WithRefreshInterval(30*time.Second),
		WithCustomLabels(map[string]string{"env": "test"}),
		WithMetricPrefix("pfx"),
	)

	if m.namespace != "custom" {
		t.Errorf("expected namespace custom, got %s", m.namespace)
	}
	if m.subsystem != "testing" {
		t.Errorf("expected subsystem testing, got %s", m.subsystem)
	}
	if len(m.histogramBuckets) != 3 {
		t.Errorf("expected 3 buckets, got %d", len(m.histogramBuckets))
	}
	if m.enabled {
		t.Error("expected metrics disabled")
	}
	if m.refreshInterval != 30*time.Second {
		t.Errorf("expected refresh interval 30s, got %v", m.refreshInterval)
	}
	if m.customLabels["env"] != "test" {
		t.Errorf("expected custom label env=test, got %v", m.customLabels)
	}
	if m.metricPrefix != "pfx" {
		t.Errorf("expected metric prefix pfx, got %s", m.metricPrefix)
	}
}

func TestOptionsIgnoreZeroValues(t *testing.T) {
	m := NewManager(
		WithPrometheusRegistry(prometheus.NewRegistry()),
		WithNamespace(""),
		WithSubsystem(""),
		WithHistogramBuckets(nil),
		WithRefreshInterval(0),
		WithMetricPrefix(""),
	)

	if m.namespace != "envsentry" {
		t.Errorf("empty namespace should be ignored, got %s", m.namespace)
	}
	if m.subsystem != "core" {
		t.Errorf("empty subsystem should be ignored, got %s", m.subsystem)
	}
	if len(m.histogramBuckets) == 0 {
		t.Error("nil buckets should keep defaults")
	}
	if m.refreshInterval != defaultRefreshInterval {
		t.Errorf("zero interval should keep default, got %v", m.refreshInterval)
	}
}

func TestIngestCounters(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	m.readingsStored.Inc()
	m.readingsStored.Inc()
	m.readingsDuplicate.Inc()
	m.readingsInvalid.Inc()

	if got := testutil.ToFloat64(m.readingsStored); got != 2 {
		t.Errorf("expected readingsStored 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.readingsDuplicate); got != 1 {
		t.Errorf("expected readingsDuplicate 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.readingsInvalid); got != 1 {
		t.Errorf("expected readingsInvalid 1, got %v", got)
	}
}

func TestStoreGauges(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	m.storeReadingsTotal.Set(42)
	m.storeLocationCount.Set(3)
	m.storeReadingsPerLocation.WithLabelValues("berlin").Set(14)

	if got := testutil.ToFloat64(m.storeReadingsTotal); got != 42 {
		t.Errorf("expected storeReadingsTotal 42, got %v", got)
	}
	if got := testutil.ToFloat64(m.storeLocationCount); got != 3 {
		t.Errorf("expected storeLocationCount 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.storeReadingsPerLocation.WithLabelValues("berlin")); got != 14 {
		t.Errorf("expected berlin gauge 14, got %v", got)
	}
}

func TestQueueMetrics(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	m.queueCapacity.Set(1024)
	m.queueSize.Set(512)
	m.queueUtilization.Set(0.5)
	m.queueEnqueueRate.Inc()
	m.queueDequeueRate.Inc()
	m.queueEnqueueErrors.Inc()

	if got := testutil.ToFloat64(m.queueUtilization); got != 0.5 {
		t.Errorf("expected utilization 0.5, got %v", got)
	}
	if got := testutil.ToFloat64(m.queueEnqueueErrors); got != 1 {
		t.Errorf("expected 1 enqueue error, got %v", got)
	}
}

func TestErrorVectors(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	m.errorRateByComponent.WithLabelValues("store", "duplicate").Inc()
	m.errorRateByComponent.WithLabelValues("store", "duplicate").Inc()
	m.errorRateByType.WithLabelValues("validation", "warning").Inc()
	m.errorRateByEndpoint.WithLabelValues("/readings", "POST", "invalid").Inc()

	if got := testutil.ToFloat64(m.errorRateByComponent.WithLabelValues("store", "duplicate")); got != 2 {
		t.Errorf("expected component error count 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.errorRateByType.WithLabelValues("validation", "warning")); got != 1 {
		t.Errorf("expected type error count 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.errorRateByEndpoint.WithLabelValues("/readings", "POST", "invalid")); got != 1 {
		t.Errorf("expected endpoint error count 1, got %v", got)
	}
}

func TestGlobalWrappers(t *testing.T) {
	RecordReadingStored()
	RecordReadingDuplicate()
	RecordReadingInvalid()
	UpdateStoreReadingsTotal(10)
	UpdateStoreLocationCount(2)
	UpdateStoreReadingsPerLocation("oslo", 5)
	RecordStoreAppendLatency(0.3)
	RecordStoreQueryLatency(0.1)
	RecordStoreTrimDeleted(4)
	UpdateQueueCapacity(100)
	UpdateQueueSize(10)
	UpdateQueueUtilization(0.1)
	RecordQueueEnqueue()
	RecordQueueDequeue()
	RecordQueueEnqueueError()
	RecordQueueProcessingLatency(0.2)
	UpdateWorkerActiveCount(4)
	RecordWorkerProcessingLatency(1.5)
	RecordWorkerError()
	RecordPredictionGenerated()
	RecordPredictionLatency(2.0)
	RecordAlertsComposed(3)
	RecordCollectorFetch()
	RecordCollectorFetchError()
	RecordCollectorFetchLatency(12.0)
	RecordHTTPRequest("/risk/{location}", "GET", "200")
	RecordHTTPRequestDuration("/risk/{location}", "GET", "200", 1.2)
	RecordErrorByComponent("worker", "append_failed")
	RecordErrorByType("append_failed", "error")
	RecordErrorByEndpoint("/readings", "POST", "backpressure")
	RecordErrorLatency("worker", "append_failed", 0.4)
	UpdateSystemMemoryUsage(1 << 20)
	UpdateSystemGoroutineCount(12)
	RecordSystemGCPauseTime(0.05)
}

func TestGetRegistryExposesMetrics(t *testing.T) {
	RecordReadingStored()

	families, err := GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := false
	for _, fam := range families {
		if strings.Contains(fam.GetName(), "readings_stored_total") {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected readings_stored_total in registry output")
	}
}

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the registry exposed on /api/metrics
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Custom histogram buckets optimized for API response times ranging from
	// milliseconds to 30+ seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Client Metrics
	DBRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	// Storage Client Metrics (receipt artifacts)
	StorageRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	SessionTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorshub_session_transitions_total",
			Help: "Total number of session status transitions",
		},
		[]string{"from_status", "to_status"},
	)

	SessionsCreated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorshub_sessions_created_total",
			Help: "Total number of session booking requests created",
		},
		[]string{"pricing"},
	)

	SessionCascadeCancellations = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorshub_session_cascade_cancellations_total",
			Help: "Total number of pending sessions canceled because an overlapping session was approved",
		},
	)

	RescheduleActions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorshub_reschedule_actions_total",
			Help: "Total number of reschedule negotiation actions",
		},
		[]string{"action", "status"},
	)

	ScheduleConflicts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorshub_schedule_conflicts_total",
			Help: "Total number of schedule conflict detections",
		},
		[]string{"operation"},
	)

	SessionListDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mentorshub_session_list_duration_seconds",
			Help:    "Duration of session list queries in seconds",
			Buckets: CustomAPIBuckets,
		},
	)

	WebhookDeliveries = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorshub_webhook_deliveries_total",
			Help: "Total number of outbound event webhook deliveries",
		},
		[]string{"event", "status"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// Init registers runtime collectors and the service info gauge
func Init(serviceName string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	serviceInfo := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_info",
			Help: "Service identity",
		},
		[]string{"service_name"},
	)
	serviceInfo.WithLabelValues(serviceName).Set(1)
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

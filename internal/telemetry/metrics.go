// Package telemetry provides application-level observability for the
// student-tracking backend.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// served by the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<TECNM_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not served by the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Tracked-entity CRUD counters (labelled by entity collection and operation)
//   - Audit trail counters: records written, persistence failures, label
//     resolution failures and shipper failures
//   - Database connection pool gauge (polled every 30 s)
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/alumnos/:id)
// rather than the raw request URL. Audit metrics are labelled by entity and
// action, both of which come from the fixed entity registry.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// EntityRequestsTotal counts tracked-entity CRUD calls. "entity" is the URL
	// collection (alumnos, factores-riesgo), "operation" is list, get, create,
	// update or delete.
	//
	//   - Write rate per entity:  sum by (entity) (rate(http_entity_requests_total{operation!~"list|get"}[5m]))
	EntityRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_entity_requests_total",
			Help: "Total number of tracked-entity API requests, by entity, operation, and status code.",
		},
		[]string{"entity", "operation", "status"},
	)
)

// Audit trail metrics, recorded by the audit interceptor.
//
// AuditRecordsWrittenTotal {entity, action} counts activity_logs rows persisted.
// "entity" is the pluralised label (alumnos, pagos), "action" is CREATED, UPDATED or DELETED.
//
// AuditWriteFailuresTotal {entity} counts records that could not be persisted.
// The triggering mutation is already committed when this happens, so any
// increase means the trail has a gap:
//
//	increase(audit_write_failures_total[15m]) > 0
//
// AuditLabelResolutionFailuresTotal {type, reason} counts foreign keys that
// resolved to the unknown label. Reasons: unknown_type, invalid_id, not_found,
// empty_label, lookup_error, panic. A nil foreign key is not a failure.
//
// AuditShipFailuresTotal {shipper} counts failed copies to secondary destinations.
var (
	AuditRecordsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_records_written_total",
			Help: "Total number of audit records persisted, by entity and action.",
		},
		[]string{"entity", "action"},
	)

	AuditWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Total number of audit records that failed to persist, by entity.",
		},
		[]string{"entity"},
	)

	AuditLabelResolutionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_label_resolution_failures_total",
			Help: "Total number of foreign-key label lookups that fell back to the unknown label, by referenced type and reason.",
		},
		[]string{"type", "reason"},
	)

	AuditShipFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_ship_failures_total",
			Help: "Total number of failed audit record deliveries to secondary destinations, by shipper.",
		},
		[]string{"shipper"},
	)
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool. It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request.
//
//   - Pool utilisation (%): db_open_connections / <TECNM_DATABASE_MAX_CONNECTIONS> * 100
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector samples sql.DB pool statistics every interval until
// stop is closed or the database becomes unreachable.
func StartDBStatsCollector(db *sql.DB, interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := db.Ping(); err != nil {
					slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
					return
				}
				DBOpenConnections.Set(float64(db.Stats().OpenConnections))
			}
		}
	}()
}

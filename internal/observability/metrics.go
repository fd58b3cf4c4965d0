package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	scansTotal         *prometheus.CounterVec
	scanLatencySeconds *prometheus.HistogramVec
	reportsTotal       *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the gateway.
func RegisterMetrics() {
	registerOnce.Do(func() {
		scansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrattend_scans_total",
			Help: "Total number of QR scans processed, by outcome.",
		}, []string{"source", "result"})

		scanLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qrattend_scan_latency_seconds",
			Help:    "Latency distribution of the scan pipeline end to end.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"source"})

		reportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrattend_reports_total",
			Help: "Total number of report previews and downloads served.",
		}, []string{"type", "operation"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrattend_notifications_total",
			Help: "Total number of attendance notifications dispatched, by outcome.",
		}, []string{"result"})

		prometheus.MustRegister(scansTotal, scanLatencySeconds, reportsTotal, notificationsTotal)
	})
}

// Scans exposes the scan outcome counter.
func Scans() *prometheus.CounterVec {
	RegisterMetrics()
	return scansTotal
}

// ScanLatency exposes the scan pipeline latency histogram.
func ScanLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return scanLatencySeconds
}

// Reports exposes the report operation counter.
func Reports() *prometheus.CounterVec {
	RegisterMetrics()
	return reportsTotal
}

// Notifications exposes the notification outcome counter.
func Notifications() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

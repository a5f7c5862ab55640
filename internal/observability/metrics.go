// Package observability содержит prometheus-метрики фоновых задач сервиса.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счетчики и гистограммы задач sync и notify.
type Metrics struct {
	TidesRefreshed     prometheus.Counter
	SyncErrors         prometheus.Counter
	NotificationsSent  prometheus.Counter
	NotificationErrors prometheus.Counter
	CycleDuration      prometheus.Histogram
}

// NewMetrics создает метрики и регистрирует их в реестре prometheus по умолчанию.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TidesRefreshed,
		m.SyncErrors,
		m.NotificationsSent,
		m.NotificationErrors,
		m.CycleDuration,
	)
	return m
}

// NewMetricsForTesting создает метрики без регистрации в глобальном реестре,
// иначе повторные вызовы из тестов падают с "already registered".
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TidesRefreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "tides_refreshed_total",
			Help:      "Total tide prediction rows written by the sync job.",
		}),
		SyncErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "sync_errors_total",
			Help:      "Total failed tide refresh runs.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "notifications_sent_total",
			Help:      "Total flood notification emails delivered to the transport.",
		}),
		NotificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "notification_errors_total",
			Help:      "Total per-recipient delivery failures.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_alert",
			Name:      "notification_cycle_duration_seconds",
			Help:      "Duration of a complete notification cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	// Authentication metrics
	LoginAttempts *prometheus.CounterVec
	Logouts       prometheus.Counter

	// Domain metrics
	AppointmentOperations *prometheus.CounterVec
	ProfileOperations     *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics on reg
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by result",
		}, []string{"result"}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logouts_total",
			Help:      "Total number of revoked sessions",
		}),
		AppointmentOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "operations_total",
			Help:      "Total number of successful appointment operations",
		}, []string{"operation"}),
		ProfileOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profiles",
			Name:      "operations_total",
			Help:      "Total number of successful profile operations",
		}, []string{"kind", "operation"}),
	}
}

// Handler exposes the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the kiosk API.
type Metrics struct {
	HostsCreated     prometheus.Counter
	VisitsCheckedIn  prometheus.Counter
	VisitsCheckedOut prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HostsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_hosts_created_total",
			Help: "Total number of hosts registered",
		}),
		VisitsCheckedIn: factory.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_visits_checked_in_total",
			Help: "Total number of visitor check-ins",
		}),
		VisitsCheckedOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_visits_checked_out_total",
			Help: "Total number of visits checked out",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kiosk_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) HostCreated()     { m.HostsCreated.Inc() }
func (m *Metrics) VisitCheckedIn()  { m.VisitsCheckedIn.Inc() }
func (m *Metrics) VisitCheckedOut() { m.VisitsCheckedOut.Inc() }

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

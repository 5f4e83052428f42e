// Package metrics registers the application's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus metric for the ledger. A nil *Metrics is a
// valid no-op receiver so unit tests can skip collector registration.
type Metrics struct {
	UsersRegistered      prometheus.Counter
	RelationshipsCreated prometheus.Counter
	ForestsCreated       prometheus.Counter
	MilestonesCreated    prometheus.Counter
	PrerequisitesAdded   prometheus.Counter
	CompletionsRecorded  prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all metrics with the default registry. Call once
// per process.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_users_registered_total",
			Help: "Total number of users registered in the ledger",
		}),
		RelationshipsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_relationships_created_total",
			Help: "Total number of guardian-to-child relationships created",
		}),
		ForestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_forests_created_total",
			Help: "Total number of forests created",
		}),
		MilestonesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_milestones_created_total",
			Help: "Total number of milestones created",
		}),
		PrerequisitesAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_prerequisites_added_total",
			Help: "Total number of prerequisite edges added",
		}),
		CompletionsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_completions_recorded_total",
			Help: "Total number of completion records written",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canopy_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) IncUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) IncRelationshipsCreated() {
	if m != nil {
		m.RelationshipsCreated.Inc()
	}
}

func (m *Metrics) IncForestsCreated() {
	if m != nil {
		m.ForestsCreated.Inc()
	}
}

func (m *Metrics) IncMilestonesCreated() {
	if m != nil {
		m.MilestonesCreated.Inc()
	}
}

func (m *Metrics) IncPrerequisitesAdded() {
	if m != nil {
		m.PrerequisitesAdded.Inc()
	}
}

func (m *Metrics) IncCompletionsRecorded() {
	if m != nil {
		m.CompletionsRecorded.Inc()
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, elapsed time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, status).Observe(elapsed.Seconds())
	}
}

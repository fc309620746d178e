// Package metrics wires robot runtime instrumentation to Prometheus,
// satisfying robot.Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

// Robot implements robot.Metrics, reporting claims, outcomes, and poll
// latency per robot id and enhancement type.
type Robot struct {
	claims   *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	poll     *prometheus.HistogramVec
}

// NewRobot registers the robot runtime's metrics against reg. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewRobot(reg prometheus.Registerer) *Robot {
	m := &Robot{
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "robot_claims_total",
			Help: "Total number of pending enhancement units successfully claimed by a robot.",
		}, []string{"robot_id", "enhancement_type"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "robot_outcomes_total",
			Help: "Total number of robot handler outcomes, by terminal kind.",
		}, []string{"robot_id", "enhancement_type", "outcome"}),
		poll: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "robot_poll_seconds",
			Help:    "Duration of a single queue poll (claim attempt), whether or not it found work.",
			Buckets: prometheus.DefBuckets,
		}, []string{"robot_id"}),
	}
	reg.MustRegister(m.claims, m.outcomes, m.poll)
	return m
}

// ObserveClaim implements robot.Metrics.
func (m *Robot) ObserveClaim(robotID string, enhancementType models.EnhancementType) {
	m.claims.WithLabelValues(robotID, string(enhancementType)).Inc()
}

// ObserveOutcome implements robot.Metrics.
func (m *Robot) ObserveOutcome(robotID string, enhancementType models.EnhancementType, outcome string) {
	m.outcomes.WithLabelValues(robotID, string(enhancementType), outcome).Inc()
}

// ObservePoll implements robot.Metrics.
func (m *Robot) ObservePoll(robotID string, duration time.Duration) {
	m.poll.WithLabelValues(robotID).Observe(duration.Seconds())
}

// QueueDepth is a gauge reporting the number of PENDING units per
// enhancement type, refreshed by the CLI's run-robot daemon loop on a
// timer alongside the poll loop itself.
type QueueDepth struct {
	gauge *prometheus.GaugeVec
}

// NewQueueDepth registers the queue_depth gauge against reg.
func NewQueueDepth(reg prometheus.Registerer) *QueueDepth {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "queue_depth",
		Help: "Number of pending enhancement units currently awaiting a claim, by enhancement type.",
	}, []string{"enhancement_type"})
	reg.MustRegister(g)
	return &QueueDepth{gauge: g}
}

// Set records the current depth for enhancementType.
func (q *QueueDepth) Set(enhancementType models.EnhancementType, depth float64) {
	q.gauge.WithLabelValues(string(enhancementType)).Set(depth)
}

package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type RegistryMetrics struct {
	Applications   metrics.Counter
	Whitelisted    metrics.Gauge
	OpenChallenges metrics.Gauge
	Removals       metrics.Counter
	RewardsClaimed metrics.Counter
	RewardsPaid    metrics.Counter
}

func (r *RegistryMetrics) IncApplications() {
	r.Applications.Add(1)
}
func (r *RegistryMetrics) AddWhitelisted(delta int) {
	r.Whitelisted.Add(float64(delta))
}
func (r *RegistryMetrics) AddOpenChallenges(delta int) {
	r.OpenChallenges.Add(float64(delta))
}
func (r *RegistryMetrics) IncRemovals() {
	r.Removals.Add(1)
}
func (r *RegistryMetrics) AddRewardClaimed(amount uint64) {
	r.RewardsClaimed.Add(1)
	r.RewardsPaid.Add(float64(amount))
}

func PromRegistryMetrics() *RegistryMetrics {
	return &RegistryMetrics{
		Applications: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RegistrySubsystem,
			Name:      "applications_total",
			Help:      "Total number of listing applications.",
		}, []string{}),
		Whitelisted: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: RegistrySubsystem,
			Name:      "whitelisted",
			Help:      "Number of whitelisted listings.",
		}, []string{}),
		OpenChallenges: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: RegistrySubsystem,
			Name:      "open_challenges",
			Help:      "Number of unresolved challenges.",
		}, []string{}),
		Removals: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RegistrySubsystem,
			Name:      "removals_total",
			Help:      "Total number of listings removed from the registry.",
		}, []string{}),
		RewardsClaimed: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RegistrySubsystem,
			Name:      "rewards_claimed_total",
			Help:      "Total number of voter reward claims.",
		}, []string{}),
		RewardsPaid: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RegistrySubsystem,
			Name:      "rewards_paid_units",
			Help:      "Total token units paid out to winning voters.",
		}, []string{}),
	}
}

func NopRegistryMetrics() *RegistryMetrics {
	return &RegistryMetrics{
		Applications:   discard.NewCounter(),
		Whitelisted:    discard.NewGauge(),
		OpenChallenges: discard.NewGauge(),
		Removals:       discard.NewCounter(),
		RewardsClaimed: discard.NewCounter(),
		RewardsPaid:    discard.NewCounter(),
	}
}

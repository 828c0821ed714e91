package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type PollMetrics struct {
	Started metrics.Counter
	Commits metrics.Counter
	Reveals metrics.Counter
}

func (p *PollMetrics) IncStarted() {
	p.Started.Add(1)
}
func (p *PollMetrics) IncCommits() {
	p.Commits.Add(1)
}
func (p *PollMetrics) IncReveals() {
	p.Reveals.Add(1)
}

func PromPollMetrics() *PollMetrics {
	return &PollMetrics{
		Started: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PollSubsystem,
			Name:      "started_total",
			Help:      "Total number of polls started.",
		}, []string{}),
		Commits: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PollSubsystem,
			Name:      "commits_total",
			Help:      "Total number of vote commitments.",
		}, []string{}),
		Reveals: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PollSubsystem,
			Name:      "reveals_total",
			Help:      "Total number of vote reveals.",
		}, []string{}),
	}
}

func NopPollMetrics() *PollMetrics {
	return &PollMetrics{
		Started: discard.NewCounter(),
		Commits: discard.NewCounter(),
		Reveals: discard.NewCounter(),
	}
}

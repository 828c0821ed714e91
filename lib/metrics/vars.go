package metrics

import (
	"github.com/go-kit/kit/metrics/discard"
)

// Metrics default to discarding; `InitPrometheusMetrics` swaps in the
// prometheus implementations when the API server runs.
var (
	Version  = discard.NewGauge()
	Registry = NopRegistryMetrics()
	Poll     = NopPollMetrics()
	API      = NopAPIMetrics()
)

package metrics

func InitPrometheusMetrics() {
	Version = PromVersion()
	Registry = PromRegistryMetrics()
	Poll = PromPollMetrics()
	API = PromAPIMetrics()
}

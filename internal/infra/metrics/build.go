package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A constant metric with labels for version, commit hash and transport mode.",
	},
	[]string{"version", "commit", "transport"},
)

func SetBuildInfo(version, commit, transport string) {
	buildInfo.WithLabelValues(version, commit, transport).Set(1)
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storeOpsTotal, dbPoolStats) }

var storeOpsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_operations_total",
		Help: "State store operations by driver, operation and result.",
	},
	[]string{"driver", "op", "result"}, // e.g., driver="redis", op="get", result="hit"
)

var dbPoolStats = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_pool_stats",
		Help: "Current state of the database connection pool.",
	},
	[]string{"state"}, // 'total', 'idle', 'in_use'
)

func IncStoreOp(driver, op, result string) {
	storeOpsTotal.WithLabelValues(norm(driver), norm(op), norm(result)).Inc()
}

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

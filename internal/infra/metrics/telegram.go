package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesReceivedTotal,
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		telegramOutboundRequestsTotal,
		telegramMessagesTrackedTotal,
	)
}

var (
	telegramUpdatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Inbound updates injected into the event stream, by transport.",
		},
		[]string{"transport"}, // 'webhook', 'poll'
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	telegramOutboundRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_outbound_requests_total",
			Help: "Outbound platform requests by action and result.",
		},
		[]string{"action", "result"},
	)

	telegramMessagesTrackedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_messages_tracked_total",
			Help: "Inbound messages copied to analytics, by chat type.",
		},
		[]string{"chat_type"},
	)
)

func IncUpdate(transport string) {
	telegramUpdatesReceivedTotal.WithLabelValues(norm(transport)).Inc()
}

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncOutbound(action string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	telegramOutboundRequestsTotal.WithLabelValues(action, result).Inc()
}

func IncTrackedMessage(chatType string) {
	telegramMessagesTrackedTotal.WithLabelValues(norm(chatType)).Inc()
}

package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// alertsRelayed counts relayed alerts by mode and overall outcome.
	alertsRelayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_alerts_total",
			Help: "Total number of relayed alerts.",
		},
		[]string{"mode", "outcome"},
	)

	// telegramSends counts individual sendMessage attempts by outcome.
	telegramSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_telegram_sends_total",
			Help: "Total number of Telegram sendMessage attempts.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(alertsRelayed, telegramSends)
}

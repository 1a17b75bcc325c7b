package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		dialogueOutcomesTotal,
		documentsSentTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming messages and commands from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	dialogueOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_outcomes_total",
			Help: "Finished export dialogues by outcome.",
		},
		[]string{"outcome"}, // delivered, empty, bad_status, bad_end_date, error
	)

	documentsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_documents_sent_total",
			Help: "CSV documents uploaded to Telegram by result.",
		},
		[]string{"result"},
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncDialogueOutcome(outcome string) {
	dialogueOutcomesTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncDocumentSent(err error) {
	documentsSentTotal.WithLabelValues(successLabel(err)).Inc()
}

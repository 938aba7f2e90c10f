package app

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"quiz-progress-service/internal/domain"
)

var (
	answersCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_progress",
		Subsystem: "recorder",
		Name:      "answers_total",
		Help:      "Answer submissions grouped by outcome.",
	}, []string{"outcome"})

	completionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz_progress",
		Subsystem: "recorder",
		Name:      "quizzes_completed_total",
		Help:      "Number of quizzes that reached the completed state.",
	})

	refillCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_progress",
		Subsystem: "lives",
		Name:      "refills_total",
		Help:      "Life refill requests grouped by outcome.",
	}, []string{"outcome"})

	ledgerCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_progress",
		Subsystem: "ledger",
		Name:      "transactions_total",
		Help:      "Ledger transactions appended, per ledger and direction.",
	}, []string{"ledger", "direction"})
)

func init() {
	prometheus.MustRegister(answersCounter, completionsCounter, refillCounter, ledgerCounter)
}

func recordLedger(kind domain.LedgerKind, direction domain.Direction) {
	ledgerCounter.WithLabelValues(string(kind), string(direction)).Inc()
}

// outcomeLabel turns an error into a low-cardinality metric label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrOutOfLives):
		return "out_of_lives"
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return "already_answered"
	case errors.Is(err, domain.ErrAlreadyHasLife):
		return "already_has_life"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}

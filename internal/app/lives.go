package app

import (
	"context"
	"log/slog"

	"quiz-progress-service/internal/domain"
)

// RefillResult is the state after a successful refill.
type RefillResult struct {
	Lives  domain.Lives   `json:"lives"`
	Walnut domain.Balance `json:"walnut"`
}

// RefillLives spends walnut to restore an exhausted lives budget.
func (s *ProgressService) RefillLives(ctx context.Context, userID string) (RefillResult, error) {
	if err := requireUser(userID); err != nil {
		return RefillResult{}, err
	}
	activity, err := s.mutate(ctx, userID, func(a *domain.Activity) error {
		return a.RefillLives(s.rules, s.now())
	})
	refillCounter.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		return RefillResult{}, err
	}

	recordLedger(domain.LedgerWalnut, domain.Debit)
	result := RefillResult{Lives: activity.Lives, Walnut: activity.Walnut.Balance()}
	s.log.InfoContext(ctx, "lives refilled",
		slog.String("user_id", userID),
		slog.Int("lives", result.Lives.Value),
		slog.Float64("walnut_remaining", result.Walnut.Remaining),
	)
	s.publish(ctx, s.event(EventLivesRefilled, userID, result))
	return result, nil
}

// CanAttempt reports whether the user may submit another answer.
func (s *ProgressService) CanAttempt(ctx context.Context, userID string, isPremium bool) (bool, error) {
	activity, err := s.liveActivity(ctx, userID)
	if err != nil {
		return false, err
	}
	return activity.CanAttempt(isPremium), nil
}

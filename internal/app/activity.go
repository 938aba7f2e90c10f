package app

import (
	"context"
	"log/slog"

	"quiz-progress-service/internal/domain"
)

// Register creates the activity record of a newly registered user.
func (s *ProgressService) Register(ctx context.Context, userID string, interests []string) (domain.ActivitySummary, error) {
	if err := requireUser(userID); err != nil {
		return domain.ActivitySummary{}, err
	}
	activity := domain.NewActivity(userID, interests, s.rules.MaxLives, s.now())
	if err := s.activities.Create(ctx, activity); err != nil {
		return domain.ActivitySummary{}, err
	}
	s.log.InfoContext(ctx, "activity registered", slog.String("user_id", userID))
	s.publish(ctx, s.event(EventActivityOpened, userID, nil))
	return summarize(activity), nil
}

// Summary returns lives, balances and completion count for a user.
func (s *ProgressService) Summary(ctx context.Context, userID string) (domain.ActivitySummary, error) {
	if err := requireUser(userID); err != nil {
		return domain.ActivitySummary{}, err
	}
	activity, err := s.liveActivity(ctx, userID)
	if err != nil {
		return domain.ActivitySummary{}, err
	}
	return summarize(activity), nil
}

// Delete soft-deletes the activity; it disappears from every ledger, streak and leaderboard view.
func (s *ProgressService) Delete(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.mutate(ctx, userID, func(a *domain.Activity) error {
		a.IsDeleted = true
		return nil
	}); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "activity deleted", slog.String("user_id", userID))
	s.publish(ctx, s.event(EventActivityClosed, userID, nil))
	return nil
}

func summarize(a domain.Activity) domain.ActivitySummary {
	return domain.ActivitySummary{
		UserID:           a.UserID,
		Lives:            a.Lives,
		Walnut:           a.Walnut.Balance(),
		XP:               a.XP.Balance(),
		CompletedQuizzes: len(a.CompletionDays()),
	}
}

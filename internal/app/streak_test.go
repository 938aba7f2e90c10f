package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
	"quiz-progress-service/internal/infra/memory"
)

func seedCompletions(t *testing.T, store *memory.ActivityStore, userID string, stamps ...time.Time) {
	t.Helper()
	_, err := store.Update(context.Background(), userID, func(a *domain.Activity) error {
		for i, ts := range stamps {
			completed := ts
			a.Quizzes = append(a.Quizzes, domain.QuizProgress{
				QuizID:      fmt.Sprintf("seed-%d", i),
				Questions:   []domain.QuestionAttempt{{QuestionID: "q1", AnsweredOn: ts}},
				CompletedOn: &completed,
			})
		}
		// An unfinished quiz never counts.
		a.Quizzes = append(a.Quizzes, domain.QuizProgress{
			QuizID:    "unfinished",
			Questions: []domain.QuestionAttempt{{QuestionID: "q1", AnsweredOn: stamps[0]}},
		})
		return nil
	})
	require.NoError(t, err)
}

func day(d, hour int) time.Time {
	return time.Date(2024, time.May, d, hour, 0, 0, 0, time.UTC)
}

func completedDays(week []domain.StreakDay) []int {
	var out []int
	for _, d := range week {
		if d.IsCompleted {
			out = append(out, d.Date.Day())
		}
	}
	return out
}

func TestStreakTodayAndYesterday(t *testing.T) {
	f := newFixture(t)
	f.register(t, "u1")
	seedCompletions(t, f.activities, "u1", day(14, 9), day(15, 8))

	report, err := f.service.Streak(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Streak)
	require.Len(t, report.Week, 7)
	assert.Equal(t, time.Sunday, report.Week[0].Date.Weekday())
	assert.Equal(t, 12, report.Week[0].Date.Day())
	assert.Equal(t, 18, report.Week[6].Date.Day())
	assert.Equal(t, []int{14, 15}, completedDays(report.Week))
}

func TestStreakGapResetsRun(t *testing.T) {
	f := newFixture(t)
	f.register(t, "u1")
	seedCompletions(t, f.activities, "u1", day(10, 9), day(11, 9), day(13, 9), day(14, 22))

	report, err := f.service.Streak(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Streak)
	assert.Equal(t, []int{13, 14}, completedDays(report.Week))
}

func TestStreakBrokenWhenLastRunIsOld(t *testing.T) {
	f := newFixture(t)
	f.register(t, "u1")
	seedCompletions(t, f.activities, "u1", day(11, 9), day(12, 9), day(13, 9))

	report, err := f.service.Streak(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, report.Streak)
	assert.Equal(t, []int{12, 13}, completedDays(report.Week))
}

func TestStreakCountsSameDayOnce(t *testing.T) {
	f := newFixture(t)
	f.register(t, "u1")
	seedCompletions(t, f.activities, "u1", day(15, 7), day(13, 9), day(15, 1), day(14, 9), day(15, 12))

	report, err := f.service.Streak(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Streak)
}

func TestStreakWithoutCompletions(t *testing.T) {
	f := newFixture(t)
	f.register(t, "u1")

	report, err := f.service.Streak(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, report.Streak)
	assert.Empty(t, completedDays(report.Week))
	assert.Len(t, report.Week, 7)
}

func TestStreakUsesConfiguredTimezone(t *testing.T) {
	activities := memory.NewActivityStore()
	tz := time.FixedZone("UTC+10", 10*60*60)
	// 2024-05-15 23:30 UTC is Thursday 16 May in UTC+10.
	now := time.Date(2024, time.May, 15, 23, 30, 0, 0, time.UTC)
	service := app.NewProgressService(activities,
		memory.NewQuizRepository(memory.NewStaticQuizLoader(nil), time.Minute),
		memory.NewUserDirectory(),
		app.WithClock(func() time.Time { return now }),
		app.WithLocation(tz),
	)
	_, err := service.Register(context.Background(), "u1", nil)
	require.NoError(t, err)
	// 14:30 UTC on the 15th is 00:30 on the 16th locally; 13:00 UTC is 23:00 on the 15th.
	seedCompletions(t, activities, "u1", day(15, 14).Add(30*time.Minute), day(15, 13))

	report, err := service.Streak(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Streak)
	assert.Equal(t, []int{15, 16}, completedDays(report.Week))
}

func TestStreakForDeletedActivity(t *testing.T) {
	f := newFixture(t)
	f.register(t, "u1")
	require.NoError(t, f.service.Delete(context.Background(), "u1"))

	_, err := f.service.Streak(context.Background(), "u1")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

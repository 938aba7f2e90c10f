package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
	"quiz-progress-service/internal/infra/memory"
)

type fixture struct {
	service    *app.ProgressService
	activities *memory.ActivityStore
	users      *memory.UserDirectory
	events     *recordingPublisher
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		activities: memory.NewActivityStore(),
		users: memory.NewUserDirectory(
			domain.UserProfile{ID: "u1", Name: "Alice", Photo: "alice.png"},
			domain.UserProfile{ID: "u2", Name: "Bob", Photo: "bob.png"},
			domain.UserProfile{ID: "u3", Name: "Carol"},
		),
		events: &recordingPublisher{},
		// A Wednesday.
		now: time.Date(2024, time.May, 15, 14, 30, 0, 0, time.UTC),
	}
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(catalog()), time.Minute)
	f.service = app.NewProgressService(f.activities, quizzes, f.users,
		app.WithClock(func() time.Time { return f.now }),
		app.WithLocker(memory.NewUserLocker()),
		app.WithPublisher(f.events),
	)
	return f
}

func (f *fixture) register(t *testing.T, userIDs ...string) {
	t.Helper()
	for _, id := range userIDs {
		_, err := f.service.Register(context.Background(), id, []string{"math"})
		require.NoError(t, err)
	}
}

func (f *fixture) activity(t *testing.T, userID string) domain.Activity {
	t.Helper()
	a, err := f.activities.Get(context.Background(), userID)
	require.NoError(t, err)
	return a
}

func (f *fixture) answer(userID, quizID, questionID string, answer ...string) (domain.AnswerResult, error) {
	return f.service.SubmitAnswer(context.Background(), app.SubmitAnswerInput{
		UserID:     userID,
		QuizID:     quizID,
		QuestionID: questionID,
		Answer:     answer,
		Duration:   3.5,
	})
}

func catalog() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Basics",
			Questions: []domain.Question{
				{ID: "q1", Description: "Two plus two.", CorrectAnswers: []domain.AnswerValue{{Value: "4"}}, Points: 10},
				{ID: "q2", Description: "Primes.", CorrectAnswers: []domain.AnswerValue{{Value: "A"}, {Value: "B"}}, Points: 4},
				{ID: "s1", IsSurvey: true},
				{ID: "gone", IsDeleted: true, CorrectAnswers: []domain.AnswerValue{{Value: "x"}}, Points: 1},
			},
		},
		"quiz-2": {
			ID:        "quiz-2",
			Questions: []domain.Question{{ID: "q1", CorrectAnswers: []domain.AnswerValue{{Value: "yes"}}, Points: 2}},
		},
		"quiz-3": {
			ID:        "quiz-3",
			Questions: []domain.Question{{ID: "q1", CorrectAnswers: []domain.AnswerValue{{Value: "yes"}}, Points: 2}},
		},
		"retired": {
			ID:        "retired",
			IsDeleted: true,
			Questions: []domain.Question{{ID: "q1", CorrectAnswers: []domain.AnswerValue{{Value: "yes"}}, Points: 2}},
		},
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []app.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event app.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

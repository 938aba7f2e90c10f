package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCheckAnswerSubsetRule(t *testing.T) {
	correct := []AnswerValue{{Value: "A"}, {Value: "B"}}
	cases := []struct {
		name  string
		given []string
		want  bool
	}{
		{"exact", []string{"A", "B"}, true},
		{"subset", []string{"A"}, true},
		{"reordered", []string{"B", "A"}, true},
		{"wrong value", []string{"C"}, false},
		{"mixed", []string{"A", "C"}, false},
		{"too many", []string{"A", "B", "C"}, false},
		{"empty", []string{}, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := CheckAnswer(correct, tc.given); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestConsumeLifeStopsAtZero(t *testing.T) {
	now := time.Now()
	a := NewActivity("u1", nil, 1, now)
	a.ConsumeLife(DefaultRules(), now)
	a.ConsumeLife(DefaultRules(), now)
	if a.Lives.Value != 0 {
		t.Fatalf("expected lives clamped at 0, got %d", a.Lives.Value)
	}
	if a.CanAttempt(false) {
		t.Fatalf("no lives should block a regular user")
	}
	if !a.CanAttempt(true) {
		t.Fatalf("premium users bypass the lives gate")
	}
}

func TestConsumeLifeCapsAtLoweredMaximum(t *testing.T) {
	now := time.Now()
	a := NewActivity("u1", nil, 5, now)

	a.ConsumeLife(Rules{MaxLives: 3}, now)
	if a.Lives.Value != 3 {
		t.Fatalf("expected lives capped at the lowered maximum 3, got %d", a.Lives.Value)
	}
	a.ConsumeLife(Rules{MaxLives: 3}, now)
	if a.Lives.Value != 2 {
		t.Fatalf("expected 2 lives, got %d", a.Lives.Value)
	}
}

func TestRefillLives(t *testing.T) {
	rules := DefaultRules()
	now := time.Now()

	a := NewActivity("u1", nil, rules.MaxLives, now)
	if err := a.RefillLives(rules, now); !errors.Is(err, ErrAlreadyHasLife) {
		t.Fatalf("expected already has life, got %v", err)
	}

	a.Lives.Value = 0
	if err := a.Reward("quiz", 23, rules, now); err != nil {
		t.Fatalf("reward: %v", err)
	}
	if err := a.RefillLives(rules, now); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance with 23 walnut, got %v", err)
	}

	if err := a.Reward("quiz", 97, rules, now); err != nil {
		t.Fatalf("reward: %v", err)
	}
	if err := a.RefillLives(rules, now); err != nil {
		t.Fatalf("refill with 120 walnut: %v", err)
	}
	if a.Lives.Value != rules.MaxLives {
		t.Fatalf("expected %d lives, got %d", rules.MaxLives, a.Lives.Value)
	}
	if a.Walnut.Remaining != 0 || a.Walnut.Total != 120 {
		t.Fatalf("unexpected walnut balance %+v", a.Walnut.Balance())
	}
	if a.XP.Total != 600 {
		t.Fatalf("refill must not touch xp, got %v", a.XP.Total)
	}
}

func TestRecordAttemptCompletesQuizOnce(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	a := NewActivity("u1", nil, 3, now)

	if _, err := a.RecordAttempt("quiz-1", QuestionAttempt{QuestionID: "q1", AnsweredOn: now}, 2); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if state := a.Progress("quiz-1").State(); state != ProgressInProgress {
		t.Fatalf("expected in progress, got %s", state)
	}
	if _, err := a.RecordAttempt("quiz-1", QuestionAttempt{QuestionID: "q1", AnsweredOn: now}, 2); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}
	done := now.Add(time.Hour)
	progress, err := a.RecordAttempt("quiz-1", QuestionAttempt{QuestionID: "q2", AnsweredOn: done}, 2)
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if progress.State() != ProgressCompleted || !progress.CompletedOn.Equal(done) {
		t.Fatalf("expected completion at %v, got %+v", done, progress.CompletedOn)
	}
	if len(a.CompletionDays()) != 1 {
		t.Fatalf("expected one completion")
	}
}

func TestActivityCloneIsDeep(t *testing.T) {
	now := time.Now()
	a := NewActivity("u1", []string{"math"}, 3, now)
	_, _ = a.RecordAttempt("quiz-1", QuestionAttempt{QuestionID: "q1", Answer: []string{"A"}, AnsweredOn: now}, 1)
	_ = a.Reward("quiz", 10, DefaultRules(), now)

	c := a.Clone()
	c.Quizzes[0].Questions[0].Answer[0] = "Z"
	c.Walnut.Transactions[0].Value = 999
	*c.Quizzes[0].CompletedOn = now.Add(time.Hour)
	c.Interests[0] = "art"

	if a.Quizzes[0].Questions[0].Answer[0] != "A" || a.Walnut.Transactions[0].Value != 10 ||
		!a.Quizzes[0].CompletedOn.Equal(now) || a.Interests[0] != "math" {
		t.Fatalf("clone shares state with the original")
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"quiz-progress-service/internal/domain"
)

// SubmitAnswerInput is a verified answer submission.
type SubmitAnswerInput struct {
	UserID     string
	IsPremium  bool
	QuizID     string
	QuestionID string
	Answer     []string
	Duration   float64
}

func (in SubmitAnswerInput) validate() error {
	if err := requireUser(in.UserID); err != nil {
		return err
	}
	switch {
	case in.QuizID == "":
		return fmt.Errorf("%w: missing quiz id", domain.ErrInvalid)
	case in.QuestionID == "":
		return fmt.Errorf("%w: missing question id", domain.ErrInvalid)
	case len(in.Answer) == 0:
		return fmt.Errorf("%w: answer must not be empty", domain.ErrInvalid)
	case in.Duration < 0:
		return fmt.Errorf("%w: duration must not be negative", domain.ErrInvalid)
	}
	return nil
}

// SubmitAnswer records a single answer at most once per (user, quiz, question), scores it and
// applies the lives or ledger side effect in the same atomic update.
func (s *ProgressService) SubmitAnswer(ctx context.Context, in SubmitAnswerInput) (domain.AnswerResult, error) {
	if err := in.validate(); err != nil {
		return domain.AnswerResult{}, err
	}

	// Catalog misses are reported after the lives gate, so only infrastructure failures stop here.
	quiz, lookupErr := s.quizzes.GetQuiz(ctx, in.QuizID)
	if lookupErr != nil && !errors.Is(lookupErr, domain.ErrNotFound) {
		return domain.AnswerResult{}, fmt.Errorf("load quiz %s: %w", in.QuizID, lookupErr)
	}

	var (
		result        domain.AnswerResult
		justCompleted bool
	)
	_, err := s.mutate(ctx, in.UserID, func(a *domain.Activity) error {
		if !a.CanAttempt(in.IsPremium) {
			return domain.ErrOutOfLives
		}
		if lookupErr != nil || quiz.IsDeleted {
			return domain.ErrQuizNotFound
		}
		question, ok := quiz.Question(in.QuestionID)
		if !ok {
			return domain.ErrQuestionNotFound
		}

		now := s.now()
		isCorrect := domain.CheckAnswer(question.CorrectAnswers, in.Answer)
		wasCompleted := a.Progress(in.QuizID).State() == domain.ProgressCompleted
		progress, err := a.RecordAttempt(in.QuizID, domain.QuestionAttempt{
			QuestionID: in.QuestionID,
			Answer:     append([]string(nil), in.Answer...),
			IsCorrect:  isCorrect,
			Duration:   in.Duration,
			AnsweredOn: now,
		}, quiz.TotalQuestionCount())
		if err != nil {
			return err
		}
		completed := progress.State() == domain.ProgressCompleted

		if isCorrect {
			if err := a.Reward(rewardTitle(quiz), question.Points, s.rules, now); err != nil {
				return err
			}
		} else {
			a.ConsumeLife(s.rules, now)
		}

		result = domain.AnswerResult{
			QuizID:      in.QuizID,
			QuestionID:  in.QuestionID,
			IsCorrect:   isCorrect,
			Description: question.Description,
			Completed:   completed,
			LivesLeft:   a.Lives.Value,
		}
		if len(question.CorrectAnswers) > 0 {
			result.CorrectAnswer = question.CorrectAnswers[0].Value
		}
		justCompleted = completed && !wasCompleted
		return nil
	})
	answersCounter.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		return domain.AnswerResult{}, err
	}

	if result.IsCorrect && quizPoints(quiz, in.QuestionID) > 0 {
		recordLedger(domain.LedgerWalnut, domain.Credit)
		recordLedger(domain.LedgerXP, domain.Credit)
	}
	s.log.InfoContext(ctx, "answer recorded",
		slog.String("user_id", in.UserID),
		slog.String("quiz_id", in.QuizID),
		slog.String("question_id", in.QuestionID),
		slog.Bool("correct", result.IsCorrect),
		slog.Int("lives", result.LivesLeft),
	)
	events := []Event{s.event(EventAnswerRecorded, in.UserID, result)}
	if justCompleted {
		completionsCounter.Inc()
		events = append(events, s.event(EventQuizCompleted, in.UserID, map[string]string{"quizId": in.QuizID}))
	}
	s.publish(ctx, events...)
	return result, nil
}

func rewardTitle(quiz domain.Quiz) string {
	if quiz.Title != "" {
		return quiz.Title
	}
	return quiz.ID
}

func quizPoints(quiz domain.Quiz, questionID string) int {
	question, _ := quiz.Question(questionID)
	return question.Points
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quiz-progress-service/internal/domain"
)

// ActivityRepository abstracts where activity documents live (in-memory, Postgres, Mongo).
type ActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) error
	Get(ctx context.Context, userID string) (domain.Activity, error)
	// Update hands fn a private copy of the user's activity and persists it only when fn
	// returns nil. Calls for the same user are serialized.
	Update(ctx context.Context, userID string, fn func(*domain.Activity) error) (domain.Activity, error)
	// List returns every activity that is not soft-deleted.
	List(ctx context.Context) ([]domain.Activity, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// UserDirectory resolves display data for users.
type UserDirectory interface {
	Profiles(ctx context.Context, userIDs []string) (map[string]domain.UserProfile, error)
}

// UserLocker provides per-user mutual exclusion around mutations.
type UserLocker interface {
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}

// EventPublisher receives domain events after a mutation has been committed.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Event is a committed state change other services may react to.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

const (
	EventAnswerRecorded = "answer.recorded"
	EventQuizCompleted  = "quiz.completed"
	EventLivesRefilled  = "lives.refilled"
	EventLedgerEntry    = "ledger.entry"
	EventActivityOpened = "activity.registered"
	EventActivityClosed = "activity.deleted"
)

const publishTimeout = 5 * time.Second

// ProgressService contains the progress accounting use cases.
type ProgressService struct {
	activities ActivityRepository
	quizzes    QuizRepository
	users      UserDirectory
	locker     UserLocker
	publisher  EventPublisher
	rules      domain.Rules
	loc        *time.Location
	now        func() time.Time
	log        *slog.Logger
}

// Option customizes a ProgressService.
type Option func(*ProgressService)

// WithRules overrides the lives and reward numbers.
func WithRules(rules domain.Rules) Option {
	return func(s *ProgressService) { s.rules = rules }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ProgressService) { s.now = now }
}

// WithLocation sets the time zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *ProgressService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLocker adds an outer per-user lock, e.g. one shared between instances.
func WithLocker(locker UserLocker) Option {
	return func(s *ProgressService) { s.locker = locker }
}

// WithPublisher enables domain events.
func WithPublisher(publisher EventPublisher) Option {
	return func(s *ProgressService) { s.publisher = publisher }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *ProgressService) {
		if logger != nil {
			s.log = logger
		}
	}
}

func NewProgressService(activities ActivityRepository, quizzes QuizRepository, users UserDirectory, opts ...Option) *ProgressService {
	s := &ProgressService{
		activities: activities,
		quizzes:    quizzes,
		users:      users,
		rules:      domain.DefaultRules(),
		loc:        time.UTC,
		now:        time.Now,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutate applies fn to the live (non-deleted) activity of userID as one atomic update.
func (s *ProgressService) mutate(ctx context.Context, userID string, fn func(*domain.Activity) error) (domain.Activity, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, userID)
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Activity{}, fmt.Errorf("lock user %s: %w: %w", userID, domain.ErrConflict, err)
		}
		if err != nil {
			return domain.Activity{}, fmt.Errorf("lock user %s: %w", userID, err)
		}
		defer unlock()
	}
	return s.activities.Update(ctx, userID, func(a *domain.Activity) error {
		if a.IsDeleted {
			return domain.ErrActivityNotFound
		}
		if err := fn(a); err != nil {
			return err
		}
		a.UpdatedAt = s.now()
		return nil
	})
}

// liveActivity loads an activity, hiding soft-deleted records.
func (s *ProgressService) liveActivity(ctx context.Context, userID string) (domain.Activity, error) {
	activity, err := s.activities.Get(ctx, userID)
	if err != nil {
		return domain.Activity{}, err
	}
	if activity.IsDeleted {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	return activity, nil
}

// publish sends events best-effort; the state change they describe is already committed, so
// delivery is detached from the caller's cancellation and bounded by publishTimeout instead.
func (s *ProgressService) publish(ctx context.Context, events ...Event) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	for _, event := range events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.WarnContext(ctx, "publish event failed",
				slog.String("type", event.Type),
				slog.String("user_id", event.UserID),
				slog.Any("error", err),
			)
		}
	}
}

func (s *ProgressService) event(eventType, userID string, payload any) Event {
	return Event{Type: eventType, UserID: userID, Payload: payload, OccurredAt: s.now()}
}

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user id", domain.ErrInvalid)
	}
	return nil
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the class of every missing-entity error.
	ErrNotFound = errors.New("not found")
	// ErrPreconditionFailed is the class of errors raised when the current state forbids an action.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrInvalid is the class of malformed input errors.
	ErrInvalid = errors.New("invalid request")
	// ErrConflict is returned when a concurrent writer kept winning an optimistic update.
	ErrConflict = errors.New("concurrent update conflict")
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrQuestionNotFound indicates a submitted question ID is invalid for the quiz.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	// ErrActivityNotFound is returned for missing or soft-deleted activity records.
	ErrActivityNotFound = fmt.Errorf("activity %w", ErrNotFound)
	// ErrLeaderboardEmpty is returned when a leaderboard page has no rows.
	ErrLeaderboardEmpty = fmt.Errorf("leaderboard page %w", ErrNotFound)

	ErrOutOfLives          = fmt.Errorf("%w: no lives left", ErrPreconditionFailed)
	ErrAlreadyAnswered     = fmt.Errorf("%w: question already answered", ErrPreconditionFailed)
	ErrAlreadyHasLife      = fmt.Errorf("%w: lives are not exhausted", ErrPreconditionFailed)
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient balance", ErrPreconditionFailed)
	ErrActivityExists      = fmt.Errorf("%w: activity already exists", ErrPreconditionFailed)

	// ErrInvalidAmount rejects zero or negative ledger values.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrInvalid)
	// ErrUnknownLedger rejects ledger kinds outside the closed set.
	ErrUnknownLedger = fmt.Errorf("%w: unknown ledger", ErrInvalid)
	// ErrUnknownDirection rejects transaction directions other than credit and debit.
	ErrUnknownDirection = fmt.Errorf("%w: unknown transaction direction", ErrInvalid)
	// ErrUnknownCategory rejects transaction categories outside the closed set.
	ErrUnknownCategory = fmt.Errorf("%w: unknown transaction category", ErrInvalid)
)

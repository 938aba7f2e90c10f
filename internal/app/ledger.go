package app

import (
	"context"
	"log/slog"

	"quiz-progress-service/internal/domain"
)

// LedgerEntryInput describes a manual ledger movement (badges, corrections, ...).
type LedgerEntryInput struct {
	UserID   string
	Ledger   domain.LedgerKind
	Category domain.Category
	Title    string
	Value    float64
}

// Credit appends a credit to one of the user's ledgers.
func (s *ProgressService) Credit(ctx context.Context, in LedgerEntryInput) (domain.Balance, error) {
	return s.appendTransaction(ctx, domain.Credit, in)
}

// Debit appends a debit; it fails with ErrInsufficientBalance instead of overdrawing.
func (s *ProgressService) Debit(ctx context.Context, in LedgerEntryInput) (domain.Balance, error) {
	return s.appendTransaction(ctx, domain.Debit, in)
}

func (s *ProgressService) appendTransaction(ctx context.Context, direction domain.Direction, in LedgerEntryInput) (domain.Balance, error) {
	if err := requireUser(in.UserID); err != nil {
		return domain.Balance{}, err
	}
	if !in.Ledger.Valid() {
		return domain.Balance{}, domain.ErrUnknownLedger
	}
	tx, err := domain.NewTransaction(direction, in.Category, in.Title, in.Value, s.now())
	if err != nil {
		return domain.Balance{}, err
	}

	var balance domain.Balance
	_, err = s.mutate(ctx, in.UserID, func(a *domain.Activity) error {
		ledger, err := a.Ledger(in.Ledger)
		if err != nil {
			return err
		}
		if err := ledger.Append(tx); err != nil {
			return err
		}
		balance = ledger.Balance()
		return nil
	})
	if err != nil {
		return domain.Balance{}, err
	}

	recordLedger(in.Ledger, direction)
	s.log.InfoContext(ctx, "ledger transaction appended",
		slog.String("user_id", in.UserID),
		slog.String("ledger", string(in.Ledger)),
		slog.String("direction", string(direction)),
		slog.String("category", string(in.Category)),
		slog.Float64("value", in.Value),
		slog.Float64("remaining", balance.Remaining),
	)
	s.publish(ctx, s.event(EventLedgerEntry, in.UserID, map[string]any{
		"ledger":      in.Ledger,
		"transaction": tx,
	}))
	return balance, nil
}

// Balance returns the derived balances of one ledger.
func (s *ProgressService) Balance(ctx context.Context, userID string, kind domain.LedgerKind) (domain.Balance, error) {
	if err := requireUser(userID); err != nil {
		return domain.Balance{}, err
	}
	activity, err := s.liveActivity(ctx, userID)
	if err != nil {
		return domain.Balance{}, err
	}
	ledger, err := activity.Ledger(kind)
	if err != nil {
		return domain.Balance{}, err
	}
	return ledger.Balance(), nil
}

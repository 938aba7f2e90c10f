package domain

import (
	"errors"
	"testing"
	"time"
)

func TestLedgerTotalIsSumOfCredits(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var l Ledger
	values := []float64{10, 25, 5, 60}
	want := 0.0
	for _, v := range values {
		tx, err := NewTransaction(Credit, CategoryLearning, "quiz", v, now)
		if err != nil {
			t.Fatalf("new transaction: %v", err)
		}
		if err := l.Append(tx); err != nil {
			t.Fatalf("append: %v", err)
		}
		want += v
	}
	if l.Total != want || l.Remaining != want {
		t.Fatalf("expected total=remaining=%v, got total=%v remaining=%v", want, l.Total, l.Remaining)
	}
	if len(l.Transactions) != len(values) {
		t.Fatalf("expected %d transactions, got %d", len(values), len(l.Transactions))
	}
}

func TestLedgerRemainingSubtractsEachDebitOnce(t *testing.T) {
	now := time.Now()
	var l Ledger
	credit, _ := NewTransaction(Credit, CategoryLearning, "quiz", 400, now)
	if err := l.Append(credit); err != nil {
		t.Fatalf("credit: %v", err)
	}
	for i := 0; i < 3; i++ {
		debit, _ := NewTransaction(Debit, CategoryLifeRefill, "refill", 120, now)
		if err := l.Append(debit); err != nil {
			t.Fatalf("debit %d: %v", i, err)
		}
	}
	if l.Total != 400 {
		t.Fatalf("expected total 400, got %v", l.Total)
	}
	if l.Remaining != 40 {
		t.Fatalf("expected remaining 40, got %v", l.Remaining)
	}

	more, _ := NewTransaction(Credit, CategoryBadges, "badge", 10, now)
	if err := l.Append(more); err != nil {
		t.Fatalf("credit after debits: %v", err)
	}
	if l.Remaining != 50 {
		t.Fatalf("credit must not reset remaining, got %v", l.Remaining)
	}
}

func TestLedgerRejectsOverdraw(t *testing.T) {
	var l Ledger
	debit, _ := NewTransaction(Debit, CategoryLifeRefill, "refill", 1, time.Now())
	if err := l.Append(debit); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if len(l.Transactions) != 0 {
		t.Fatalf("rejected debit must not be appended")
	}
}

func TestNewTransactionValidates(t *testing.T) {
	if _, err := NewTransaction(Credit, CategoryLearning, "x", 0, time.Now()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := NewTransaction(Credit, Category("bonus"), "x", 1, time.Now()); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected unknown category, got %v", err)
	}
	if _, err := NewTransaction(Direction("refund"), CategoryLearning, "x", 1, time.Now()); !errors.Is(err, ErrUnknownDirection) {
		t.Fatalf("expected unknown direction, got %v", err)
	}
	if !errors.Is(ErrUnknownDirection, ErrInvalid) {
		t.Fatalf("unknown direction should classify as invalid")
	}
	if !errors.Is(ErrInvalidAmount, ErrInvalid) {
		t.Fatalf("invalid amount should classify as invalid")
	}
}

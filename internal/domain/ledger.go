package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerKind names one of the two point ledgers kept per user.
type LedgerKind string

const (
	// LedgerWalnut is the spendable currency.
	LedgerWalnut LedgerKind = "walnut"
	// LedgerXP is the experience score used for ranking.
	LedgerXP LedgerKind = "xp"
)

// Valid reports whether k is a known ledger.
func (k LedgerKind) Valid() bool {
	return k == LedgerWalnut || k == LedgerXP
}

// Category is the business reason of a transaction.
type Category string

const (
	CategoryLearning   Category = "learning"
	CategoryLifeRefill Category = "lifeRefill"
	CategoryBadges     Category = "badges"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryLearning, CategoryLifeRefill, CategoryBadges:
		return true
	}
	return false
}

// Direction is the accounting side of a transaction.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// Valid reports whether d is credit or debit.
func (d Direction) Valid() bool {
	return d == Credit || d == Debit
}

// Transaction is an immutable ledger entry.
type Transaction struct {
	ID         string    `json:"id" bson:"id"`
	Title      string    `json:"title" bson:"title"`
	Category   Category  `json:"category" bson:"category"`
	Direction  Direction `json:"direction" bson:"direction"`
	Value      float64   `json:"value" bson:"value"`
	OccurredAt time.Time `json:"occurredAt" bson:"occurredAt"`
}

// NewTransaction validates and stamps a ledger entry.
func NewTransaction(direction Direction, category Category, title string, value float64, now time.Time) (Transaction, error) {
	if !direction.Valid() {
		return Transaction{}, ErrUnknownDirection
	}
	if !category.Valid() {
		return Transaction{}, ErrUnknownCategory
	}
	if value <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	return Transaction{
		ID:         uuid.NewString(),
		Title:      title,
		Category:   category,
		Direction:  direction,
		Value:      value,
		OccurredAt: now,
	}, nil
}

// Ledger is an append-only transaction log with derived balances.
// Total is the sum of credits; Remaining is credits minus debits.
type Ledger struct {
	Transactions []Transaction `json:"transactions" bson:"transactions"`
	Total        float64       `json:"total" bson:"total"`
	Remaining    float64       `json:"remaining" bson:"remaining"`
}

// Append adds tx and recomputes the balances from the whole history.
// Debits that would overdraw the ledger are rejected before anything is appended.
func (l *Ledger) Append(tx Transaction) error {
	if tx.Direction == Debit && tx.Value > l.Remaining {
		return ErrInsufficientBalance
	}
	l.Transactions = append(l.Transactions, tx)
	l.Recompute()
	return nil
}

// Recompute derives Total and Remaining by rescanning every transaction.
func (l *Ledger) Recompute() {
	var credits, debits float64
	for _, tx := range l.Transactions {
		switch tx.Direction {
		case Credit:
			credits += tx.Value
		case Debit:
			debits += tx.Value
		}
	}
	l.Total = credits
	l.Remaining = credits - debits
}

// Balance returns the derived balances.
func (l Ledger) Balance() Balance {
	return Balance{Total: l.Total, Remaining: l.Remaining}
}

func (l Ledger) clone() Ledger {
	out := l
	out.Transactions = append([]Transaction(nil), l.Transactions...)
	return out
}

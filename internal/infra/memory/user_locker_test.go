package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUserLockerLifecycle(t *testing.T) {
	locker := NewUserLocker()

	unlock, err := locker.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if locker.Len() != 1 {
		t.Fatalf("expected lock entry present")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "u1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second lock to time out, got %v", err)
	}

	other, err := locker.Lock(context.Background(), "u2")
	if err != nil {
		t.Fatalf("lock other user: %v", err)
	}
	other()

	unlock()
	unlock()
	if locker.Len() != 0 {
		t.Fatalf("expected lock entries removed when released, got %d", locker.Len())
	}
}

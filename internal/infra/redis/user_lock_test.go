package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"quiz-progress-service/internal/domain"
)

func TestUserLockerSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locker := NewUserLocker(newClient(mr), time.Minute, 50*time.Millisecond)

	unlock, err := locker.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !mr.Exists("activity:lock:u1") {
		t.Fatalf("expected redis key to be set")
	}

	_, err = locker.Lock(context.Background(), "u1")
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected contended lock to time out, got %v", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("lock timeout should classify as a conflict, got %v", err)
	}

	unlock()
	if mr.Exists("activity:lock:u1") {
		t.Fatalf("expected redis key to be removed")
	}

	again, err := locker.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	again()
}

func TestUserLockerExpiredHolderCannotReleaseNewOwner(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locker := NewUserLocker(newClient(mr), time.Second, 50*time.Millisecond)
	stale, err := locker.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	mr.FastForward(2 * time.Second)

	fresh, err := locker.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lock after expiry: %v", err)
	}
	stale()
	if !mr.Exists("activity:lock:u1") {
		t.Fatalf("stale unlock removed the new owner's lock")
	}
	fresh()
	if mr.Exists("activity:lock:u1") {
		t.Fatalf("expected owner unlock to remove key")
	}
}

func TestUserLockerHonoursContext(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locker := NewUserLocker(newClient(mr), time.Minute, time.Minute)
	unlock, err := locker.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "u1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
}

package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-progress-service/internal/domain"
)

// ActivityStore is an in-memory implementation of app.ActivityRepository.
// Each user has its own mutex so updates for different users do not contend.
type ActivityStore struct {
	mu      sync.RWMutex
	records map[string]*activityRecord
}

type activityRecord struct {
	mu       sync.Mutex
	activity domain.Activity
}

func NewActivityStore() *ActivityStore {
	return &ActivityStore{records: make(map[string]*activityRecord)}
}

func (s *ActivityStore) Create(_ context.Context, activity domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[activity.UserID]; ok {
		return domain.ErrActivityExists
	}
	s.records[activity.UserID] = &activityRecord{activity: activity.Clone()}
	return nil
}

func (s *ActivityStore) Get(_ context.Context, userID string) (domain.Activity, error) {
	rec, ok := s.record(userID)
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.activity.Clone(), nil
}

func (s *ActivityStore) Update(ctx context.Context, userID string, fn func(*domain.Activity) error) (domain.Activity, error) {
	rec, ok := s.record(userID)
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.Activity{}, err
	}

	next := rec.activity.Clone()
	if err := fn(&next); err != nil {
		return domain.Activity{}, err
	}
	rec.activity = next
	return next.Clone(), nil
}

func (s *ActivityStore) List(_ context.Context) ([]domain.Activity, error) {
	s.mu.RLock()
	recs := make([]*activityRecord, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	out := make([]domain.Activity, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		if !rec.activity.IsDeleted {
			out = append(out, rec.activity.Clone())
		}
		rec.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *ActivityStore) record(userID string) (*activityRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	return rec, ok
}

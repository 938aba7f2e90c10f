package memory

import (
	"context"
	"sync"

	"quiz-progress-service/internal/domain"
)

// UserDirectory is a map-backed app.UserDirectory (useful for tests/demos).
type UserDirectory struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
}

func NewUserDirectory(profiles ...domain.UserProfile) *UserDirectory {
	d := &UserDirectory{profiles: make(map[string]domain.UserProfile, len(profiles))}
	for _, p := range profiles {
		d.profiles[p.ID] = p
	}
	return d
}

// Put adds or replaces a profile.
func (d *UserDirectory) Put(profile domain.UserProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[profile.ID] = profile
}

// Profiles returns the known profiles among userIDs; unknown ids are omitted.
func (d *UserDirectory) Profiles(_ context.Context, userIDs []string) (map[string]domain.UserProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]domain.UserProfile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := d.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

package app

import (
	"context"
	"sort"
	"time"

	"quiz-progress-service/internal/domain"
)

const dayLayout = "2006-01-02"

// Streak returns the current week's completion grid and the consecutive-day streak.
func (s *ProgressService) Streak(ctx context.Context, userID string) (domain.StreakReport, error) {
	if err := requireUser(userID); err != nil {
		return domain.StreakReport{}, err
	}
	activity, err := s.liveActivity(ctx, userID)
	if err != nil {
		return domain.StreakReport{}, err
	}

	today := startOfDay(s.now().In(s.loc))
	days := completionDays(activity.CompletionDays(), s.loc)
	return domain.StreakReport{
		Week:   weekGrid(days, today),
		Streak: currentStreak(days, today),
	}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// completionDays truncates timestamps to calendar days in loc, deduplicated and ascending.
func completionDays(stamps []time.Time, loc *time.Location) []time.Time {
	seen := make(map[string]struct{}, len(stamps))
	days := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		day := startOfDay(ts.In(loc))
		key := day.Format(dayLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// weekGrid reports Sunday through Saturday of today's week; a day is completed when any quiz
// was completed on it.
func weekGrid(days []time.Time, today time.Time) []domain.StreakDay {
	completed := make(map[string]struct{}, len(days))
	for _, day := range days {
		completed[day.Format(dayLayout)] = struct{}{}
	}
	sunday := today.AddDate(0, 0, -int(today.Weekday()))
	week := make([]domain.StreakDay, 7)
	for i := range week {
		day := sunday.AddDate(0, 0, i)
		_, ok := completed[day.Format(dayLayout)]
		week[i] = domain.StreakDay{Date: day, IsCompleted: ok}
	}
	return week
}

type dayRun struct {
	length  int
	lastDay time.Time
}

// currentStreak groups ascending distinct days into runs of consecutive days: subtracting each
// day's 1-based ordinal yields the same anchor for every member of a run. The run ending most
// recently counts only if it ends today or yesterday.
func currentStreak(days []time.Time, today time.Time) int {
	runs := make(map[string]*dayRun)
	var latest *dayRun
	for i, day := range days {
		anchor := day.AddDate(0, 0, -(i + 1)).Format(dayLayout)
		run, ok := runs[anchor]
		if !ok {
			run = &dayRun{}
			runs[anchor] = run
		}
		run.length++
		run.lastDay = day
		if latest == nil || run.lastDay.After(latest.lastDay) {
			latest = run
		}
	}
	if latest == nil {
		return 0
	}
	last := latest.lastDay.Format(dayLayout)
	if last == today.Format(dayLayout) || last == today.AddDate(0, 0, -1).Format(dayLayout) {
		return latest.length
	}
	return 0
}

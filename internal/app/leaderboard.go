package app

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"quiz-progress-service/internal/domain"
)

// LeaderboardQuery selects a leaderboard page. Limit 0 returns every row.
type LeaderboardQuery struct {
	UserID string
	Page   int
	Limit  int
	Sort   domain.SortDirection
}

func (q *LeaderboardQuery) normalize() error {
	if err := requireUser(q.UserID); err != nil {
		return err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", domain.ErrInvalid)
	}
	switch q.Sort {
	case "":
		// Ascending has always been the default for this endpoint.
		q.Sort = domain.SortAsc
	case domain.SortAsc, domain.SortDesc:
	default:
		return fmt.Errorf("%w: sort must be asc or desc", domain.ErrInvalid)
	}
	return nil
}

// Leaderboard ranks every live activity by total xp and attaches the caller's own row.
func (s *ProgressService) Leaderboard(ctx context.Context, q LeaderboardQuery) (domain.Leaderboard, error) {
	if err := q.normalize(); err != nil {
		return domain.Leaderboard{}, err
	}

	var (
		activities []domain.Activity
		self       map[string]domain.UserProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activities, err = s.activities.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		self, err = s.users.Profiles(gctx, []string{q.UserID})
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Leaderboard{}, fmt.Errorf("load leaderboard: %w", err)
	}

	rows := make([]domain.LeaderboardEntry, 0, len(activities))
	existing := domain.LeaderboardEntry{ID: q.UserID}
	for _, activity := range activities {
		if activity.IsDeleted {
			continue
		}
		row := domain.LeaderboardEntry{ID: activity.UserID, XP: activity.XP.Total}
		if activity.UserID == q.UserID {
			existing.XP = row.XP
		}
		rows = append(rows, row)
	}
	sortEntries(rows, q.Sort)

	board := paginate(rows, q.Page, q.Limit)
	if len(board.Data) == 0 {
		return domain.Leaderboard{}, domain.ErrLeaderboardEmpty
	}

	ids := make([]string, 0, len(board.Data))
	for _, row := range board.Data {
		ids = append(ids, row.ID)
	}
	profiles, err := s.users.Profiles(ctx, ids)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("load profiles: %w", err)
	}
	for i := range board.Data {
		applyProfile(&board.Data[i], profiles)
	}
	applyProfile(&existing, self)
	board.Existing = existing
	return board, nil
}

func sortEntries(rows []domain.LeaderboardEntry, direction domain.SortDirection) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].XP != rows[j].XP {
			if direction == domain.SortDesc {
				return rows[i].XP > rows[j].XP
			}
			return rows[i].XP < rows[j].XP
		}
		return rows[i].ID < rows[j].ID
	})
}

func paginate(rows []domain.LeaderboardEntry, page, limit int) domain.Leaderboard {
	board := domain.Leaderboard{TotalDocs: len(rows), Limit: limit, Page: page}
	if page > 1 {
		prev := page - 1
		board.HasPrevPage = true
		board.PrevPage = &prev
	}

	if limit == 0 {
		board.Data = rows
		board.TotalPages = page + 1
		return board
	}

	board.TotalPages = (len(rows) + limit - 1) / limit
	start := (page - 1) * limit
	if start < len(rows) {
		end := start + limit
		if end > len(rows) {
			end = len(rows)
		}
		board.Data = rows[start:end]
	}
	if page < board.TotalPages {
		next := page + 1
		board.HasNextPage = true
		board.NextPage = &next
	}
	return board
}

func applyProfile(entry *domain.LeaderboardEntry, profiles map[string]domain.UserProfile) {
	if profile, ok := profiles[entry.ID]; ok {
		entry.Name = profile.Name
		entry.Photo = profile.Photo
	}
}

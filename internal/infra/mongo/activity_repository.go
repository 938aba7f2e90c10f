package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"quiz-progress-service/internal/domain"
)

const defaultMaxAttempts = 5

// activityDocument is the stored shape: the activity plus a version used for compare-and-swap.
type activityDocument struct {
	ID              string  `bson:"_id"`
	Version         int64   `bson:"version"`
	XPTotal         float64 `bson:"xpTotal"`
	domain.Activity `bson:",inline"`
}

// ActivityRepository keeps activities in a document collection keyed by user id.
// Updates are optimistic: the replace only matches the version that was read, and a lost race
// re-reads and re-applies the mutation.
type ActivityRepository struct {
	col         *mongo.Collection
	maxAttempts int
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection("activities"), maxAttempts: defaultMaxAttempts}
}

// EnsureIndexes creates the index the leaderboard scan relies on.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "isDeleted", Value: 1}, {Key: "xpTotal", Value: -1}},
	})
	return err
}

func (r *ActivityRepository) Create(ctx context.Context, activity domain.Activity) error {
	_, err := r.col.InsertOne(ctx, activityDocument{
		ID:       activity.UserID,
		XPTotal:  activity.XP.Total,
		Activity: activity,
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrActivityExists
	}
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Get(ctx context.Context, userID string) (domain.Activity, error) {
	doc, err := r.find(ctx, userID)
	if err != nil {
		return domain.Activity{}, err
	}
	return doc.Activity, nil
}

func (r *ActivityRepository) Update(ctx context.Context, userID string, fn func(*domain.Activity) error) (domain.Activity, error) {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		doc, err := r.find(ctx, userID)
		if err != nil {
			return domain.Activity{}, err
		}
		activity := doc.Activity
		if err := fn(&activity); err != nil {
			return domain.Activity{}, err
		}

		res, err := r.col.ReplaceOne(ctx,
			bson.M{"_id": userID, "version": doc.Version},
			activityDocument{ID: userID, Version: doc.Version + 1, XPTotal: activity.XP.Total, Activity: activity},
		)
		if err != nil {
			return domain.Activity{}, fmt.Errorf("replace activity: %w", err)
		}
		if res.MatchedCount == 1 {
			return activity, nil
		}
	}
	return domain.Activity{}, fmt.Errorf("update activity %s: %w", userID, domain.ErrConflict)
}

func (r *ActivityRepository) List(ctx context.Context) ([]domain.Activity, error) {
	cur, err := r.col.Find(ctx, bson.M{"isDeleted": false})
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Activity
	for cur.Next(ctx) {
		var doc activityDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		out = append(out, doc.Activity)
	}
	return out, cur.Err()
}

func (r *ActivityRepository) find(ctx context.Context, userID string) (activityDocument, error) {
	var doc activityDocument
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return activityDocument{}, domain.ErrActivityNotFound
	}
	if err != nil {
		return activityDocument{}, fmt.Errorf("find activity: %w", err)
	}
	return doc, nil
}

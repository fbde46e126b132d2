package mongodb

import (
	"context"
	"fmt"

	"lifeops/internal/activity/domain/model"
	"lifeops/internal/activity/domain/repository"
	apperrors "lifeops/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection holding activity events
const CollectionName = "activity_events"

// MongoEventRepository implements the EventRepository interface using MongoDB
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates the repository and ensures its indexes exist
func NewMongoEventRepository(ctx context.Context, db *mongo.Database) (*MongoEventRepository, error) {
	repo := &MongoEventRepository{collection: db.Collection(CollectionName)}

	// Listing index: a user's events newest first
	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("user_id_created_at"),
	}
	if _, err := repo.collection.Indexes().CreateOne(ctx, userIndex); err != nil {
		return nil, fmt.Errorf("failed to create activity index: %w", err)
	}

	return repo, nil
}

// Record inserts one event
func (r *MongoEventRepository) Record(ctx context.Context, event *model.Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewDatabaseError("record activity", apperrors.DatabaseErrorUniqueViolation, err)
		}
		return apperrors.NewDatabaseError("record activity", apperrors.DatabaseErrorOther, err)
	}
	return nil
}

// ListByUser returns one page of the user's events newest first
func (r *MongoEventRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Event, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("count activity", apperrors.DatabaseErrorOther, err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(repository.Offset(page, limit))).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("list activity", apperrors.DatabaseErrorOther, err)
	}
	defer cursor.Close(ctx)

	events := make([]model.Event, 0, limit)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, apperrors.NewDatabaseError("decode activity", apperrors.DatabaseErrorOther, err)
	}
	return events, total, nil
}

var _ repository.EventRepository = (*MongoEventRepository)(nil)

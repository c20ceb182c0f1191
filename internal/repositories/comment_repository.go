package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommentRepository exposes the counting queries used by the analytics aggregator.
type CommentRepository interface {
	Count(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountFlagged(ctx context.Context) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB.
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository.
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// Count returns the total number of comments.
func (r *MongoCommentRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// CountCreatedBetween counts comments created in [from, to).
func (r *MongoCommentRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"created_at": bson.M{"$gte": from, "$lt": to},
	})
}

// CountFlagged counts comments carrying at least one user report.
func (r *MongoCommentRepository) CountFlagged(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"flags.0": bson.M{"$exists": true}})
}

package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RatingRepository exposes the counting and averaging queries used by the
// analytics aggregator.
type RatingRepository interface {
	Count(ctx context.Context) (int64, error)
	Average(ctx context.Context) (float64, error)
}

// MongoRatingRepository implements RatingRepository for MongoDB.
type MongoRatingRepository struct {
	collection *mongo.Collection
}

// NewMongoRatingRepository creates a new MongoRatingRepository.
func NewMongoRatingRepository(db *mongo.Database) *MongoRatingRepository {
	return &MongoRatingRepository{collection: db.Collection("ratings")}
}

// Count returns the total number of ratings.
func (r *MongoRatingRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// Average returns the mean of all rating values, 0 when there are none.
func (r *MongoRatingRepository) Average(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$value"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Avg float64 `bson:"avg"`
	}
	if err = cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Avg, nil
}

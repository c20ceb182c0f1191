package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TagCount is one tag with its recipe frequency.
type TagCount struct {
	Tag   string `bson:"_id"`
	Count int64  `bson:"count"`
}

// RecipeRepository exposes the counting and aggregation queries the analytics
// aggregator needs. Recipe CRUD itself lives outside this subsystem.
type RecipeRepository interface {
	Count(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountFlagged(ctx context.Context) (int64, error)
	CountTagged(ctx context.Context) (int64, error)
	SumViews(ctx context.Context) (int64, error)
	SumLikes(ctx context.Context) (int64, error)
	TagFrequency(ctx context.Context, limit int64) ([]TagCount, error)
	CountCreatedPerDay(ctx context.Context, from, to time.Time) (map[string]int64, error)
}

// MongoRecipeRepository implements RecipeRepository for MongoDB.
type MongoRecipeRepository struct {
	collection *mongo.Collection
}

// NewMongoRecipeRepository creates a new MongoRecipeRepository.
func NewMongoRecipeRepository(db *mongo.Database) *MongoRecipeRepository {
	return &MongoRecipeRepository{collection: db.Collection("recipes")}
}

// Count returns the total number of recipes.
func (r *MongoRecipeRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// CountCreatedBetween counts recipes created in [from, to).
func (r *MongoRecipeRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"created_at": bson.M{"$gte": from, "$lt": to},
	})
}

// CountByStatus counts recipes with the given moderation status.
func (r *MongoRecipeRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

// CountFlagged counts recipes carrying at least one user report.
func (r *MongoRecipeRepository) CountFlagged(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"flags.0": bson.M{"$exists": true}})
}

// CountTagged counts recipes with at least one tag.
func (r *MongoRecipeRepository) CountTagged(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"tags.0": bson.M{"$exists": true}})
}

func (r *MongoRecipeRepository) sumField(ctx context.Context, field string) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$" + field}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

// SumViews returns the aggregate view count across all recipes.
func (r *MongoRecipeRepository) SumViews(ctx context.Context) (int64, error) {
	return r.sumField(ctx, "views_count")
}

// SumLikes returns the aggregate like count across all recipes.
func (r *MongoRecipeRepository) SumLikes(ctx context.Context) (int64, error) {
	return r.sumField(ctx, "likes_count")
}

// TagFrequency returns the most frequent recipe tags, descending.
func (r *MongoRecipeRepository) TagFrequency(ctx context.Context, limit int64) ([]TagCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$tags"}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tags := []TagCount{}
	if err = cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CountCreatedPerDay returns new-recipe counts keyed by YYYY-MM-DD for [from, to).
func (r *MongoRecipeRepository) CountCreatedPerDay(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": from, "$lt": to},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$created_at"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Day   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	perDay := make(map[string]int64, len(rows))
	for _, row := range rows {
		perDay[row.Day] = row.Count
	}
	return perDay, nil
}

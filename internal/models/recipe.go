package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recipe moderation statuses used by the analytics breakdowns.
const (
	RecipeStatusPublished = "published"
	RecipeStatusPending   = "pending"
	RecipeStatusRejected  = "rejected"
)

// Recipe represents a recipe document stored in MongoDB.
type Recipe struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     uint               `json:"user_id" bson:"user_id"`
	Title      string             `json:"title" bson:"title"`
	Tags       []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Status     string             `json:"status" bson:"status"`
	ViewsCount int64              `json:"views_count" bson:"views_count"`
	LikesCount int64              `json:"likes_count" bson:"likes_count"`
	Flags      []ContentFlag      `json:"flags,omitempty" bson:"flags,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// ContentFlag is a single user report against a recipe or comment.
type ContentFlag struct {
	UserID    uint      `json:"user_id" bson:"user_id"`
	Reason    string    `json:"reason" bson:"reason"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

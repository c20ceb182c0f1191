package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a recipe, stored in MongoDB.
type Comment struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	RecipeID  primitive.ObjectID  `json:"recipe_id" bson:"recipe_id"`
	UserID    uint                `json:"user_id" bson:"user_id"`
	ParentID  *primitive.ObjectID `json:"parent_id,omitempty" bson:"parent_id,omitempty"` // set for replies
	Content   string              `json:"content" bson:"content"`
	Flags     []ContentFlag       `json:"flags,omitempty" bson:"flags,omitempty"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
}

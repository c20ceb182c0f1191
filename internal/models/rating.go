package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is a 1-5 star rating of a recipe, stored in MongoDB.
type Rating struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RecipeID  primitive.ObjectID `json:"recipe_id" bson:"recipe_id"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	Value     int                `json:"value" bson:"value" validate:"required,min=1,max=5"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

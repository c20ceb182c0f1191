package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType identifies the event a notification was produced for.
type NotificationType string

const (
	NotificationRecipeLike         NotificationType = "recipe_like"
	NotificationRecipeComment      NotificationType = "recipe_comment"
	NotificationCommentReply       NotificationType = "comment_reply"
	NotificationRecipeFavorite     NotificationType = "recipe_favorite"
	NotificationCollectionFollow   NotificationType = "collection_follow"
	NotificationUserFollow         NotificationType = "user_follow"
	NotificationRecipePublished    NotificationType = "recipe_published"
	NotificationRecipeFeatured     NotificationType = "recipe_featured"
	NotificationCommentLike        NotificationType = "comment_like"
	NotificationSystemAnnouncement NotificationType = "system_announcement"
)

// NotificationPriority is informational only and does not affect processing order.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// NotificationTTL is how long a notification is kept before it becomes
// eligible for automatic removal.
const NotificationTTL = 30 * 24 * time.Hour

// ChannelState tracks whether a single delivery channel's side effect has fired.
type ChannelState struct {
	Sent   bool       `json:"sent" bson:"sent"`
	SentAt *time.Time `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
}

// DeliveryState tracks per-channel delivery, independent of persistence.
type DeliveryState struct {
	InApp ChannelState `json:"inApp" bson:"inApp"`
	Email ChannelState `json:"email" bson:"email"`
}

// NotificationData is the structured payload used to build a navigation target.
type NotificationData struct {
	RecipeID     *primitive.ObjectID    `json:"recipeId,omitempty" bson:"recipeId,omitempty"`
	CommentID    *primitive.ObjectID    `json:"commentId,omitempty" bson:"commentId,omitempty"`
	CollectionID *primitive.ObjectID    `json:"collectionId,omitempty" bson:"collectionId,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Notification is a user notification stored in MongoDB. Title and message are
// rendered once at creation and never change; the only mutations afterwards are
// the read-state flip and the email delivery flag.
type Notification struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Recipient uint                 `json:"recipient" bson:"recipient"`
	Sender    *uint                `json:"sender,omitempty" bson:"sender,omitempty"` // nil for system-originated notifications
	Type      NotificationType     `json:"type" bson:"type"`
	Title     string               `json:"title" bson:"title"`
	Message   string               `json:"message" bson:"message"`
	Data      NotificationData     `json:"data" bson:"data"`
	IsRead    bool                 `json:"isRead" bson:"isRead"`
	ReadAt    *time.Time           `json:"readAt,omitempty" bson:"readAt,omitempty"` // set exactly once, on first read
	Delivery  DeliveryState        `json:"delivery" bson:"delivery"`
	Priority  NotificationPriority `json:"priority" bson:"priority"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time            `json:"expiresAt" bson:"expiresAt"`
}

// NotificationPreferences is the per-user delivery preference record. It is
// shaped for per-user persistence but currently served as static defaults.
type NotificationPreferences struct {
	EmailEnabled bool                      `json:"emailEnabled"`
	InAppEnabled bool                      `json:"inAppEnabled"`
	MutedTypes   []NotificationType        `json:"mutedTypes"`
	Digest       NotificationDigestSetting `json:"digest"`
}

// NotificationDigestSetting controls optional batched email summaries.
type NotificationDigestSetting struct {
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency"` // daily or weekly
}

// DefaultNotificationPreferences returns the platform defaults.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailEnabled: true,
		InAppEnabled: true,
		MutedTypes:   []NotificationType{},
		Digest:       NotificationDigestSetting{Enabled: false, Frequency: "daily"},
	}
}

// UpdatePreferencesRequest defines the request body for PUT /notifications/preferences.
type UpdatePreferencesRequest struct {
	EmailEnabled *bool              `json:"emailEnabled,omitempty"`
	InAppEnabled *bool              `json:"inAppEnabled,omitempty"`
	MutedTypes   []NotificationType `json:"mutedTypes,omitempty"`
}

// AnnouncementRequest defines the request body for the admin announcement fan-out.
type AnnouncementRequest struct {
	Title    string               `json:"title" validate:"required,min=1,max=120"`
	Message  string               `json:"message" validate:"required,min=1,max=1000"`
	Priority NotificationPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Email    bool                 `json:"email,omitempty"`
}

// NotificationTypeStat is one row of the admin per-type breakdown.
type NotificationTypeStat struct {
	Type   NotificationType `json:"type" bson:"_id"`
	Total  int64            `json:"total" bson:"total"`
	Unread int64            `json:"unread" bson:"unread"`
}

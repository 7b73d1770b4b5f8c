package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. A notification only ever exists as a byproduct of a
// follow, like or comment action.
const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
)

// Notification is one entry in a user's notification stream. From and To are
// never equal; the engine refuses to synthesize self-notifications.
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FromID    primitive.ObjectID `json:"from" bson:"from"`
	ToID      primitive.ObjectID `json:"to" bson:"to"`
	Type      string             `json:"type" bson:"type"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// NotificationView is a notification with the actor resolved to the compact
// profile projection.
type NotificationView struct {
	ID        primitive.ObjectID `json:"id"`
	From      UserCompact        `json:"from"`
	Type      string             `json:"type"`
	Read      bool               `json:"read"`
	CreatedAt time.Time          `json:"created_at"`
}

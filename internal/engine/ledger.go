package engine

import (
	"context"
	"fmt"

	"github.com/magwach/twitter/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifications returns the user's notification stream, newest first, with
// each actor resolved to the compact profile projection. Listing is fused
// with read-marking: every notification returned by this call is marked read
// as a side effect, so there is no separate "mark seen" step.
func (e *Engine) Notifications(ctx context.Context, userID string) ([]models.NotificationView, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	if _, err := e.users.GetUserByID(ctx, uid); err != nil {
		return nil, lookupErr("user", err)
	}

	notifications, err := e.notifications.GetByRecipient(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	views := make([]models.NotificationView, len(notifications))
	actors := make(map[primitive.ObjectID]models.UserCompact)
	for i, n := range notifications {
		views[i] = models.NotificationView{
			ID:        n.ID,
			Type:      n.Type,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
		actor, ok := actors[n.FromID]
		if !ok {
			if from, err := e.users.GetUserByID(ctx, n.FromID); err == nil {
				actor = from.ToCompact()
			}
			actors[n.FromID] = actor
		}
		views[i].From = actor
	}

	if err := withRetry(ctx, func(ctx context.Context) error {
		return e.notifications.MarkAllAsRead(ctx, uid)
	}); err != nil {
		return nil, err
	}
	return views, nil
}

// MarkNotificationRead marks one notification read. Only the recipient may
// mark it; marking an already-read notification succeeds silently.
func (e *Engine) MarkNotificationRead(ctx context.Context, requesterID, notificationID string) error {
	rid, err := parseID(requesterID)
	if err != nil {
		return err
	}
	nid, err := parseID(notificationID)
	if err != nil {
		return err
	}

	notification, err := e.notifications.GetNotificationByID(ctx, nid)
	if err != nil {
		return lookupErr("notification", err)
	}
	if notification.ToID != rid {
		return fmt.Errorf("%w: you are not authorized to read this notification", ErrUnauthorized)
	}

	if err := withRetry(ctx, func(ctx context.Context) error {
		return e.notifications.MarkAsRead(ctx, nid)
	}); err != nil {
		return err
	}
	return nil
}

// ClearNotifications deletes every notification addressed to the user and
// returns the count. Clearing a user with no notifications fails with
// ErrNotFound: the caller asked to delete something that is not there.
func (e *Engine) ClearNotifications(ctx context.Context, userID string) (int64, error) {
	uid, err := parseID(userID)
	if err != nil {
		return 0, err
	}
	if _, err := e.users.GetUserByID(ctx, uid); err != nil {
		return 0, lookupErr("user", err)
	}

	count, err := e.notifications.DeleteAllForRecipient(ctx, uid)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: notifications", ErrNotFound)
	}
	return count, nil
}

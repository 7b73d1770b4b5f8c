// Package engine keeps the denormalized social-graph state consistent: the
// symmetric follow edge across two user records, the symmetric like
// membership across a post and a user record, the append-only comment
// threads, and the notification stream derived from all three. The store
// offers no multi-document transactions, so every cross-record mutation is
// composed from independently idempotent set operators plus a reconciling
// retry of a failed second write.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/magwach/twitter/internal/models"
	"github.com/magwach/twitter/internal/repositories"
	"github.com/magwach/twitter/pkg/media"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowState is the outcome of a follow toggle.
type FollowState string

// LikeState is the outcome of a like toggle.
type LikeState string

const (
	StateFollowed   FollowState = "followed"
	StateUnfollowed FollowState = "unfollowed"
	StateLiked      LikeState   = "liked"
	StateUnliked    LikeState   = "unliked"
)

// Engine orchestrates multi-record social mutations. All collaborators are
// injected at construction; the engine holds no ambient state.
type Engine struct {
	users         repositories.UserRepository
	posts         repositories.PostRepository
	notifications repositories.NotificationRepository
	media         media.Store
}

// New creates an Engine.
func New(users repositories.UserRepository, posts repositories.PostRepository, notifications repositories.NotificationRepository, mediaStore media.Store) *Engine {
	return &Engine{
		users:         users,
		posts:         posts,
		notifications: notifications,
		media:         mediaStore,
	}
}

// parseID converts a request-supplied hex id into an ObjectID.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed id %q", ErrValidation, id)
	}
	return oid, nil
}

// withRetry issues op and, on failure, re-issues it once. Every op passed
// here is an idempotent field-level operator, so the blind second attempt is
// safe. A failure that survives the retry is surfaced as ErrStoreUnavailable.
func withRetry(ctx context.Context, op func(context.Context) error) error {
	if err := op(ctx); err == nil {
		return nil
	}
	if err := op(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// FollowToggle flips the follow edge between actor and target. Both user
// records move together: the follower-side and following-side set mutations
// are issued as conditional set operators, and a failed second write is
// retried before the asymmetric state is surfaced as ErrStoreUnavailable.
// The derived follow notification is created on follow (deduplicated per
// ordered pair) and retracted on unfollow. The returned user is the target.
func (e *Engine) FollowToggle(ctx context.Context, actorID, targetID string) (FollowState, *models.User, error) {
	aid, err := parseID(actorID)
	if err != nil {
		return "", nil, err
	}
	tid, err := parseID(targetID)
	if err != nil {
		return "", nil, err
	}
	if aid == tid {
		return "", nil, fmt.Errorf("%w: you cannot follow or unfollow yourself", ErrConflict)
	}

	target, err := e.users.GetUserByID(ctx, tid)
	if err != nil {
		return "", nil, lookupErr("user", err)
	}
	actor, err := e.users.GetUserByID(ctx, aid)
	if err != nil {
		return "", nil, lookupErr("user", err)
	}

	// Validation is done; from here the toggle always runs to completion
	// even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	if actor.IsFollowing(tid) {
		if err := e.applyEdge(ctx, "unfollow", aid, tid,
			func(ctx context.Context) error { return e.users.RemoveFollower(ctx, tid, aid) },
			func(ctx context.Context) error { return e.users.RemoveFollowing(ctx, aid, tid) },
		); err != nil {
			return "", nil, err
		}
		if err := withRetry(ctx, func(ctx context.Context) error {
			return e.notifications.DeleteFollowNotification(ctx, aid, tid)
		}); err != nil {
			return "", nil, err
		}
		return StateUnfollowed, target, nil
	}

	if err := e.applyEdge(ctx, "follow", aid, tid,
		func(ctx context.Context) error { return e.users.AddFollower(ctx, tid, aid) },
		func(ctx context.Context) error { return e.users.AddFollowing(ctx, aid, tid) },
	); err != nil {
		return "", nil, err
	}
	if err := withRetry(ctx, func(ctx context.Context) error {
		return e.notifications.UpsertFollowNotification(ctx, aid, tid)
	}); err != nil {
		return "", nil, err
	}
	return StateFollowed, target, nil
}

// applyEdge issues the two halves of a follow-edge mutation. If the second
// half fails even after its retry, the edge is left asymmetric for
// out-of-band repair and the caller gets a definite failure, never a
// successful-looking inconsistent result.
func (e *Engine) applyEdge(ctx context.Context, op string, aid, tid primitive.ObjectID, first, second func(context.Context) error) error {
	if err := withRetry(ctx, first); err != nil {
		return err
	}
	if err := withRetry(ctx, second); err != nil {
		log.Printf("asymmetric follow edge after %s %s->%s: %v", op, aid.Hex(), tid.Hex(), err)
		return err
	}
	return nil
}

// LikeToggle flips actor's membership in the post's like set, mirrored into
// the actor's likedPosts set. A like notifies the post owner unless actor and
// owner coincide; an unlike retracts nothing. Returns the settled like set
// alongside the outcome.
func (e *Engine) LikeToggle(ctx context.Context, actorID, postID string) (LikeState, []primitive.ObjectID, error) {
	aid, err := parseID(actorID)
	if err != nil {
		return "", nil, err
	}
	pid, err := parseID(postID)
	if err != nil {
		return "", nil, err
	}

	post, err := e.posts.GetPostByID(ctx, pid)
	if err != nil {
		return "", nil, lookupErr("post", err)
	}
	if _, err := e.users.GetUserByID(ctx, aid); err != nil {
		return "", nil, lookupErr("user", err)
	}

	ctx = context.WithoutCancel(ctx)

	if post.HasLike(aid) {
		updated, err := e.updateLikeSet(ctx, pid, aid, e.posts.RemoveLike)
		if err != nil {
			return "", nil, err
		}
		if err := withRetry(ctx, func(ctx context.Context) error {
			return e.users.RemoveLikedPost(ctx, aid, pid)
		}); err != nil {
			return "", nil, err
		}
		return StateUnliked, updated.Likes, nil
	}

	updated, err := e.updateLikeSet(ctx, pid, aid, e.posts.AddLike)
	if err != nil {
		return "", nil, err
	}
	if err := withRetry(ctx, func(ctx context.Context) error {
		return e.users.AddLikedPost(ctx, aid, pid)
	}); err != nil {
		return "", nil, err
	}
	if aid != post.OwnerID {
		if err := withRetry(ctx, func(ctx context.Context) error {
			return e.notifications.CreateNotification(ctx, &models.Notification{
				FromID: aid,
				ToID:   post.OwnerID,
				Type:   models.NotificationLike,
			})
		}); err != nil {
			return "", nil, err
		}
	}
	return StateLiked, updated.Likes, nil
}

func (e *Engine) updateLikeSet(ctx context.Context, pid, aid primitive.ObjectID, op func(context.Context, primitive.ObjectID, primitive.ObjectID) (*models.Post, error)) (*models.Post, error) {
	updated, err := op(ctx, pid, aid)
	if err == nil {
		return updated, nil
	}
	if updated, err = op(ctx, pid, aid); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return updated, nil
}

// AddComment appends a comment to the post's thread and notifies the owner
// unless the commenter is the owner. Returns the post with the comment
// appended.
func (e *Engine) AddComment(ctx context.Context, actorID, postID, text string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: please provide a comment", ErrValidation)
	}
	aid, err := parseID(actorID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(postID)
	if err != nil {
		return nil, err
	}

	post, err := e.posts.GetPostByID(ctx, pid)
	if err != nil {
		return nil, lookupErr("post", err)
	}
	if _, err := e.users.GetUserByID(ctx, aid); err != nil {
		return nil, lookupErr("user", err)
	}

	ctx = context.WithoutCancel(ctx)

	comment := &models.Comment{UserID: aid, Text: text}
	updated, err := e.posts.AppendComment(ctx, pid, comment)
	if err != nil {
		if updated, err = e.posts.AppendComment(ctx, pid, comment); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if aid != post.OwnerID {
		if err := withRetry(ctx, func(ctx context.Context) error {
			return e.notifications.CreateNotification(ctx, &models.Notification{
				FromID: aid,
				ToID:   post.OwnerID,
				Type:   models.NotificationComment,
			})
		}); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// CreatePost stores a new post for the owner. At least one of text and image
// data is required; image data is handed to the media collaborator and the
// returned URL is what gets persisted.
func (e *Engine) CreatePost(ctx context.Context, ownerID, text string, imageData []byte) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(imageData) == 0 {
		return nil, fmt.Errorf("%w: please provide either text or image", ErrValidation)
	}
	oid, err := parseID(ownerID)
	if err != nil {
		return nil, err
	}
	if _, err := e.users.GetUserByID(ctx, oid); err != nil {
		return nil, lookupErr("user", err)
	}

	var imageURL string
	if len(imageData) > 0 {
		if imageURL, err = e.media.Upload(ctx, imageData); err != nil {
			return nil, err
		}
	}

	post := &models.Post{OwnerID: oid, Text: text, ImageURL: imageURL}
	if err := e.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return post, nil
}

// DeletePost removes a post. Only the owner may delete; the check runs
// against the authenticated requester, not the recorded owner string alone.
// The associated media asset is released best-effort, and notifications
// referencing the post are left as read-only history.
func (e *Engine) DeletePost(ctx context.Context, requesterID, postID string) error {
	rid, err := parseID(requesterID)
	if err != nil {
		return err
	}
	pid, err := parseID(postID)
	if err != nil {
		return err
	}

	post, err := e.posts.GetPostByID(ctx, pid)
	if err != nil {
		return lookupErr("post", err)
	}
	if post.OwnerID != rid {
		return fmt.Errorf("%w: you aren't authorized to delete this post", ErrUnauthorized)
	}

	ctx = context.WithoutCancel(ctx)

	if post.ImageURL != "" {
		if err := e.media.Release(ctx, post.ImageURL); err != nil {
			log.Printf("releasing media for post %s: %v", pid.Hex(), err)
		}
	}

	if err := withRetry(ctx, func(ctx context.Context) error {
		err := e.posts.DeletePost(ctx, pid)
		if errors.Is(err, repositories.ErrNotFound) {
			// A raced duplicate delete already won; the outcome stands.
			return nil
		}
		return err
	}); err != nil {
		return err
	}
	return nil
}

// lookupErr translates a repository lookup failure into the engine taxonomy.
func lookupErr(entity string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

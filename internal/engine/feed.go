package engine

import (
	"context"
	"fmt"

	"github.com/magwach/twitter/internal/models"
	"github.com/magwach/twitter/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feed is the read-side assembler: it composes user-graph lookups with post
// queries and denormalizes author identity into the result. It never
// mutates anything.
type Feed struct {
	users repositories.UserRepository
	posts repositories.PostRepository
}

// NewFeed creates a Feed.
func NewFeed(users repositories.UserRepository, posts repositories.PostRepository) *Feed {
	return &Feed{users: users, posts: posts}
}

// Global returns every post, newest first.
func (f *Feed) Global(ctx context.Context) ([]models.PostView, error) {
	posts, err := f.posts.GetAllPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return f.resolve(ctx, posts), nil
}

// Following returns posts authored by users the given user follows, newest
// first. An empty following set yields ErrEmptyFollowing so callers can tell
// "you follow no one" apart from "no posts exist".
func (f *Feed) Following(ctx context.Context, userID string) ([]models.PostView, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	user, err := f.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	if len(user.Following) == 0 {
		return nil, ErrEmptyFollowing
	}

	posts, err := f.posts.GetPostsByOwners(ctx, user.Following)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return f.resolve(ctx, posts), nil
}

// Authored returns the posts of the user with the given handle, newest first.
func (f *Feed) Authored(ctx context.Context, handle string) ([]models.PostView, error) {
	user, err := f.users.GetUserByHandle(ctx, handle)
	if err != nil {
		return nil, lookupErr("user", err)
	}

	posts, err := f.posts.GetPostsByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return f.resolve(ctx, posts), nil
}

// Liked returns the posts currently in the user's likedPosts set, newest
// first. The membership set is read fresh on every call, so an unlike is
// reflected immediately.
func (f *Feed) Liked(ctx context.Context, userID string) ([]models.PostView, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	user, err := f.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	if len(user.LikedPosts) == 0 {
		return []models.PostView{}, nil
	}

	posts, err := f.posts.GetPostsByIDs(ctx, user.LikedPosts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return f.resolve(ctx, posts), nil
}

// resolve denormalizes post owners and comment authors into compact
// profiles. Users are fetched once each per call; an author that has
// vanished resolves to a zero profile rather than failing the feed.
func (f *Feed) resolve(ctx context.Context, posts []models.Post) []models.PostView {
	cache := make(map[primitive.ObjectID]models.UserCompact)
	lookup := func(id primitive.ObjectID) models.UserCompact {
		if compact, ok := cache[id]; ok {
			return compact
		}
		var compact models.UserCompact
		if user, err := f.users.GetUserByID(ctx, id); err == nil {
			compact = user.ToCompact()
		}
		cache[id] = compact
		return compact
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		comments := make([]models.CommentView, len(p.Comments))
		for j, c := range p.Comments {
			comments[j] = models.CommentView{
				ID:        c.ID,
				User:      lookup(c.UserID),
				Text:      c.Text,
				CreatedAt: c.CreatedAt,
			}
		}
		views[i] = models.PostView{
			ID:        p.ID,
			Owner:     lookup(p.OwnerID),
			Text:      p.Text,
			ImageURL:  p.ImageURL,
			Likes:     p.Likes,
			Comments:  comments,
			CreatedAt: p.CreatedAt,
		}
	}
	return views
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB. Likes is an id set
// kept symmetric with each liker's likedPosts; Comments is an append-only
// sequence embedded in the post document.
type Post struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   primitive.ObjectID   `json:"owner" bson:"owner"` // immutable after creation
	Text      string               `json:"text,omitempty" bson:"text,omitempty"`
	ImageURL  string               `json:"img,omitempty" bson:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
}

// Comment is a single entry in a post's comment thread. Comments have no
// edit or delete capability; the id only exists as a lookup key.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// HasLike reports whether userID is a member of the post's like set.
func (p *Post) HasLike(userID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the request body for creating a new post. At
// least one of text and image is required; that rule crosses two fields, so
// it is enforced by the handler rather than a tag.
type CreatePostRequest struct {
	Text  string `json:"text" validate:"omitempty,max=280"`
	Image string `json:"img" validate:"omitempty,base64"`
}

// CreateCommentRequest defines the request body for commenting on a post.
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// PostView is a feed entry: a post with its owner and each comment's author
// resolved to the compact profile projection.
type PostView struct {
	ID        primitive.ObjectID   `json:"id"`
	Owner     UserCompact          `json:"owner"`
	Text      string               `json:"text,omitempty"`
	ImageURL  string               `json:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentView        `json:"comments"`
	CreatedAt time.Time            `json:"created_at"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	User      UserCompact        `json:"user"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"created_at"`
}

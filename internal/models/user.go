package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account and its side of the follow graph.
// Following, Followers and LikedPosts are id sets whose symmetric
// counterparts live on other records; they are only ever mutated through
// field-level set operators, never by whole-record writes.
type User struct {
	ID         primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserName   string               `json:"username" bson:"username"` // unique, lowercase handle
	FullName   string               `json:"full_name" bson:"full_name"`
	Email      string               `json:"email" bson:"email"`
	Password   string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	Bio        string               `json:"bio,omitempty" bson:"bio,omitempty"`
	Link       string               `json:"link,omitempty" bson:"link,omitempty"`
	ProfileImg string               `json:"profile_img,omitempty" bson:"profile_img,omitempty"`
	CoverImg   string               `json:"cover_img,omitempty" bson:"cover_img,omitempty"`
	Following  []primitive.ObjectID `json:"following" bson:"following"`
	Followers  []primitive.ObjectID `json:"followers" bson:"followers"`
	LikedPosts []primitive.ObjectID `json:"liked_posts" bson:"liked_posts"`
	CreatedAt  time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at" bson:"updated_at"`
}

// UserCompact is the minimal profile projection denormalized into feeds and
// notifications. It carries no secret fields.
type UserCompact struct {
	ID         primitive.ObjectID `json:"id"`
	UserName   string             `json:"username"`
	FullName   string             `json:"full_name"`
	ProfileImg string             `json:"profile_img,omitempty"`
}

// ToCompact returns the public projection of the user.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:         u.ID,
		UserName:   u.UserName,
		FullName:   u.FullName,
		ProfileImg: u.ProfileImg,
	}
}

// IsFollowing reports whether id is a member of the user's following set.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// HasLiked reports whether postID is a member of the user's likedPosts set.
func (u *User) HasLiked(postID primitive.ObjectID) bool {
	for _, p := range u.LikedPosts {
		if p == postID {
			return true
		}
	}
	return false
}

// CreateUserRequest defines the request body for signup.
type CreateUserRequest struct {
	UserName string `json:"username" validate:"required,min=2,max=30"`
	FullName string `json:"full_name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for login.
type LoginRequest struct {
	UserName string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the request body for a profile update. Every
// field is optional; an empty value means "retain the existing one".
type UpdateProfileRequest struct {
	FullName   string `json:"full_name,omitempty" validate:"omitempty,min=2,max=50"`
	UserName   string `json:"username,omitempty" validate:"omitempty,min=2,max=30"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Bio        string `json:"bio,omitempty" validate:"omitempty,max=200"`
	Link       string `json:"link,omitempty" validate:"omitempty,url"`
	ProfileImg string `json:"profile_img,omitempty"`
	CoverImg   string `json:"cover_img,omitempty"`
}

// ApplyProfileUpdate merges an update into a copy of the user: each optional
// field takes the new value if present and retains the existing one
// otherwise. Handles are normalized to lowercase. Pure, so the merge rule is
// testable without storage.
func ApplyProfileUpdate(u User, req UpdateProfileRequest) User {
	if req.FullName != "" {
		u.FullName = req.FullName
	}
	if req.UserName != "" {
		u.UserName = strings.ToLower(req.UserName)
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Bio != "" {
		u.Bio = req.Bio
	}
	if req.Link != "" {
		u.Link = req.Link
	}
	if req.ProfileImg != "" {
		u.ProfileImg = req.ProfileImg
	}
	if req.CoverImg != "" {
		u.CoverImg = req.CoverImg
	}
	return u
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"username"`
	jwt.RegisteredClaims
}

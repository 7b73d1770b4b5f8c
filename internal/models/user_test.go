package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplyProfileUpdate(t *testing.T) {
	base := User{
		UserName:   "alice",
		FullName:   "Alice A",
		Email:      "alice@example.com",
		Bio:        "old bio",
		Link:       "https://old.example.com",
		ProfileImg: "/media/old.img",
	}

	tests := []struct {
		name string
		req  UpdateProfileRequest
		want func(t *testing.T, got User)
	}{
		{
			name: "empty update retains everything",
			req:  UpdateProfileRequest{},
			want: func(t *testing.T, got User) {
				assert.Equal(t, base, got)
			},
		},
		{
			name: "present fields replace, absent fields retain",
			req:  UpdateProfileRequest{FullName: "Alice B", Bio: "new bio"},
			want: func(t *testing.T, got User) {
				assert.Equal(t, "Alice B", got.FullName)
				assert.Equal(t, "new bio", got.Bio)
				assert.Equal(t, "alice", got.UserName)
				assert.Equal(t, "alice@example.com", got.Email)
				assert.Equal(t, "/media/old.img", got.ProfileImg)
			},
		},
		{
			name: "handle is normalized to lowercase",
			req:  UpdateProfileRequest{UserName: "AliceInWonderland"},
			want: func(t *testing.T, got User) {
				assert.Equal(t, "aliceinwonderland", got.UserName)
			},
		},
		{
			name: "image urls replace independently",
			req:  UpdateProfileRequest{CoverImg: "/media/new-cover.img"},
			want: func(t *testing.T, got User) {
				assert.Equal(t, "/media/new-cover.img", got.CoverImg)
				assert.Equal(t, "/media/old.img", got.ProfileImg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyProfileUpdate(base, tt.req)
			tt.want(t, got)
			// The input is never mutated.
			assert.Equal(t, "Alice A", base.FullName)
		})
	}
}

func TestApplyProfileUpdate_DoesNotTouchGraphSets(t *testing.T) {
	other := primitive.NewObjectID()
	u := User{UserName: "alice", Followers: []primitive.ObjectID{other}}

	got := ApplyProfileUpdate(u, UpdateProfileRequest{Bio: "hi"})
	assert.Equal(t, []primitive.ObjectID{other}, got.Followers)
}

func TestUserSetMembership(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	u := User{Following: []primitive.ObjectID{a}, LikedPosts: []primitive.ObjectID{b}}

	assert.True(t, u.IsFollowing(a))
	assert.False(t, u.IsFollowing(b))
	assert.True(t, u.HasLiked(b))
	assert.False(t, u.HasLiked(a))
}

func TestToCompactStripsSecrets(t *testing.T) {
	u := User{
		ID:         primitive.NewObjectID(),
		UserName:   "alice",
		FullName:   "Alice A",
		Password:   "$2a$12$hash",
		Email:      "alice@example.com",
		ProfileImg: "/media/a.img",
	}

	compact := u.ToCompact()
	assert.Equal(t, u.ID, compact.ID)
	assert.Equal(t, "alice", compact.UserName)
	assert.Equal(t, "/media/a.img", compact.ProfileImg)
}

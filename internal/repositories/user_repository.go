package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/magwach/twitter/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations. Every
// follow-graph and liked-post mutation is a targeted set operation against a
// single field so that concurrent requests on unrelated fields never clobber
// each other.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	UpdateProfile(ctx context.Context, user *models.User) error
	GetSuggested(ctx context.Context, forUserID primitive.ObjectID, limit int) ([]models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user in MongoDB
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.UserName = strings.ToLower(user.UserName)
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by ID from MongoDB
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByHandle retrieves a user by their lowercase handle
func (r *MongoUserRepository) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": strings.ToLower(handle)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AddFollower adds followerID to the user's followers set. $addToSet makes a
// repeated add a no-op, so raced duplicates cannot corrupt the set.
func (r *MongoUserRepository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$addToSet", "followers", followerID)
}

// RemoveFollower removes followerID from the user's followers set.
func (r *MongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$pull", "followers", followerID)
}

// AddFollowing adds targetID to the user's following set.
func (r *MongoUserRepository) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$addToSet", "following", targetID)
}

// RemoveFollowing removes targetID from the user's following set.
func (r *MongoUserRepository) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$pull", "following", targetID)
}

// AddLikedPost adds postID to the user's likedPosts set.
func (r *MongoUserRepository) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$addToSet", "liked_posts", postID)
}

// RemoveLikedPost removes postID from the user's likedPosts set.
func (r *MongoUserRepository) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$pull", "liked_posts", postID)
}

func (r *MongoUserRepository) updateSet(ctx context.Context, userID primitive.ObjectID, op, field string, member primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{op: bson.M{field: member}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile writes the profile fields of the user. It deliberately sets
// only those fields so a concurrent follow or like on the same document is
// never overwritten.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"username":    user.UserName,
			"full_name":   user.FullName,
			"email":       user.Email,
			"password":    user.Password,
			"bio":         user.Bio,
			"link":        user.Link,
			"profile_img": user.ProfileImg,
			"cover_img":   user.CoverImg,
			"updated_at":  user.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSuggested returns a random sample of users the given user does not
// already follow, excluding the user themselves.
func (r *MongoUserRepository) GetSuggested(ctx context.Context, forUserID primitive.ObjectID, limit int) ([]models.User, error) {
	me, err := r.GetUserByID(ctx, forUserID)
	if err != nil {
		return nil, err
	}

	exclude := append([]primitive.ObjectID{forUserID}, me.Following...)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$nin": exclude}}}},
		{{Key: "$sample", Value: bson.M{"size": limit}}},
		{{Key: "$project", Value: bson.M{"password": 0}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sampling suggested users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

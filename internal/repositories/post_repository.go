package repositories

import (
	"context"
	"time"

	"github.com/magwach/twitter/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations. Like-set
// mutations and comment appends are single field-level operators; AddLike,
// RemoveLike and AppendComment return the updated document so callers see
// the settled state the store adjudicated.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	AppendComment(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Post, error)
	GetPostsByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike adds userID to the post's like set and returns the updated post.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.updateLikes(ctx, postID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike removes userID from the post's like set and returns the updated post.
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.updateLikes(ctx, postID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *MongoPostRepository) updateLikes(ctx context.Context, postID primitive.ObjectID, update bson.M) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// AppendComment assigns the comment an id and appends it to the post's
// comment thread, returning the updated post.
func (r *MongoPostRepository) AppendComment(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) (*models.Post, error) {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$push": bson.M{"comments": comment}}
	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves all posts, newest first.
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{})
}

// GetPostsByOwner retrieves the posts authored by ownerID, newest first.
func (r *MongoPostRepository) GetPostsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"owner": ownerID})
}

// GetPostsByOwners retrieves posts authored by any of ownerIDs, newest first.
func (r *MongoPostRepository) GetPostsByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"owner": bson.M{"$in": ownerIDs}})
}

// GetPostsByIDs retrieves the posts with the given ids, newest first.
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/socialnet/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID string, userID uint) (*models.Post, bool, error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID string, userID uint) error
}

// toggleAttempts bounds the retries when concurrent toggles by the same user keep flipping state.
const toggleAttempts = 3

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the feed and profile queries rely on.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID; a malformed id is reported as ErrNotFound.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByIDs returns the posts that still exist among ids, without their comments.
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			objIDs = append(objIDs, objID)
		}
	}
	if len(objIDs) == 0 {
		return []models.Post{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"comments": 0, "likes": 0})
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objIDs}}, opts)
}

// GetPostsByAuthor retrieves posts by a specific user, newest first
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error) {
	opts := options.Find().SetSkip(skip).SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, bson.M{"author_id": authorID}, opts)
}

// GetAllPosts retrieves all posts from MongoDB with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.D{}, opts)
}

func (r *MongoPostRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleLike flips userID's membership in the like set with conditional updates, so concurrent
// likes from different users never overwrite each other. It returns the post after the change and
// whether the user now likes it.
func (r *MongoPostRepository) ToggleLike(ctx context.Context, postID string, userID uint) (*models.Post, bool, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, false, ErrNotFound
	}
	after := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"comments": 0})

	for attempt := 0; attempt < toggleAttempts; attempt++ {
		var post models.Post
		err := r.collection.FindOneAndUpdate(ctx,
			bson.M{"_id": objID, "likes": bson.M{"$ne": userID}},
			bson.M{"$addToSet": bson.M{"likes": userID}},
			after,
		).Decode(&post)
		if err == nil {
			return &post, true, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, err
		}

		err = r.collection.FindOneAndUpdate(ctx,
			bson.M{"_id": objID, "likes": userID},
			bson.M{"$pull": bson.M{"likes": userID}},
			after,
		).Decode(&post)
		if err == nil {
			return &post, false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, err
		}

		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID})
		if err != nil {
			return nil, false, err
		}
		if count == 0 {
			return nil, false, ErrNotFound
		}
	}
	return nil, false, fmt.Errorf("toggle like on %s: gave up after %d attempts", postID, toggleAttempts)
}

// AddComment appends the comment; it fills in the id and timestamp.
func (r *MongoPostRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return ErrNotFound
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveComment pulls the comment only when userID wrote it.
func (r *MongoPostRepository) RemoveComment(ctx context.Context, postID, commentID string, userID uint) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return ErrNotFound
	}
	commentObjID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentObjID, "user_id": userID}}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrNotFound
	}
	return nil
}

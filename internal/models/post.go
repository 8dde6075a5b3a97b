package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB. Likes and comments live on the document
// so every interaction is a single-document update.
type Post struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author" bson:"author_id"`
	Content   string             `json:"content" bson:"content"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
	Likes     []uint             `json:"likes" bson:"likes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// HasLike reports whether userID is in the like set.
func (p *Post) HasLike(userID uint) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given hex id, or nil.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID.Hex() == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// Comment is embedded in Post.Comments in creation order.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    uint               `json:"user" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// CommentView is a comment with its author's profile resolved.
type CommentView struct {
	Comment
	User UserCompact `json:"user"`
}

// PostView is a post with its author's profile resolved.
type PostView struct {
	Post
	Author      UserCompact `json:"author"`
	LikesCount  int         `json:"likesCount"`
	IsLikedByMe bool        `json:"isLiked"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" form:"content" validate:"max=5000"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"max=1000"`
}

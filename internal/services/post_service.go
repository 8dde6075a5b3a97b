package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/metrics"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/internal/storage"
)

// FeedLimit caps the home feed.
const FeedLimit = 50

// ImageUpload is an image attached to a new post.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// PostService owns post creation, deletion and the like/comment interactions.
type PostService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	media    storage.MediaStore
	notifier Notifier
	metrics  *metrics.Metrics
}

func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	media storage.MediaStore,
	notifier Notifier,
	m *metrics.Metrics,
) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		media:    media,
		notifier: notifier,
		metrics:  m,
	}
}

func (s *PostService) CreatePost(ctx context.Context, authorID uint, content string, image *ImageUpload) (*models.PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("Post content is required")
	}

	post := &models.Post{AuthorID: authorID, Content: content}
	if image != nil {
		location, err := s.media.Save(ctx, storage.ObjectName("posts", image.Filename), image.Body)
		if err != nil {
			return nil, fmt.Errorf("store post image: %w", err)
		}
		post.Image = location
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		if post.Image != "" {
			s.removeImage(ctx, post.Image)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	views, err := s.views(ctx, authorID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Feed returns the latest posts across all users.
func (s *PostService) Feed(ctx context.Context, viewerID uint) ([]models.PostView, error) {
	posts, err := s.posts.GetAllPosts(ctx, 0, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	return s.views(ctx, viewerID, posts)
}

func (s *PostService) PostsByUser(ctx context.Context, viewerID, authorID uint) ([]models.PostView, error) {
	posts, err := s.posts.GetPostsByAuthor(ctx, authorID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load user posts: %w", err)
	}
	return s.views(ctx, viewerID, posts)
}

func (s *PostService) views(ctx context.Context, viewerID uint, posts []models.Post) ([]models.PostView, error) {
	authorIDs := make([]uint, len(posts))
	for i := range posts {
		authorIDs[i] = posts[i].AuthorID
	}
	profiles, err := loadProfiles(ctx, s.users, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, len(posts))
	for i := range posts {
		views[i] = models.PostView{
			Post:        posts[i],
			Author:      profiles[posts[i].AuthorID],
			LikesCount:  len(posts[i].Likes),
			IsLikedByMe: posts[i].HasLike(viewerID),
		}
	}
	return views, nil
}

// ToggleLike likes the post if userID has not yet, otherwise removes the like. Only a new like by
// someone other than the author notifies the author.
func (s *PostService) ToggleLike(ctx context.Context, postID string, userID uint) (*models.LikeResult, error) {
	post, liked, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Post not found")
		}
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	s.metrics.IncLike(liked)

	if liked && post.AuthorID != userID {
		id := post.ID.Hex()
		s.notifier.Notify(ctx, &models.Notification{
			RecipientID: post.AuthorID,
			SenderID:    userID,
			Type:        models.NotificationLike,
			PostID:      &id,
		})
	}
	return &models.LikeResult{Likes: len(post.Likes), IsLiked: liked}, nil
}

// AddComment appends a trimmed, non-empty comment and notifies the post author.
func (s *PostService) AddComment(ctx context.Context, postID string, userID uint, text string) (*models.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("Comment text is required")
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Post not found")
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	comment := &models.Comment{UserID: userID, Text: text}
	if err := s.posts.AddComment(ctx, postID, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Post not found")
		}
		return nil, fmt.Errorf("add comment: %w", err)
	}
	s.metrics.IncComment("add")

	if post.AuthorID != userID {
		id := post.ID.Hex()
		commentText := text
		s.notifier.Notify(ctx, &models.Notification{
			RecipientID: post.AuthorID,
			SenderID:    userID,
			Type:        models.NotificationComment,
			PostID:      &id,
			CommentText: &commentText,
		})
	}

	profiles, err := loadProfiles(ctx, s.users, []uint{userID})
	if err != nil {
		return nil, err
	}
	return &models.CommentView{Comment: *comment, User: profiles[userID]}, nil
}

func (s *PostService) Comments(ctx context.Context, postID string) ([]models.CommentView, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Post not found")
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	userIDs := make([]uint, len(post.Comments))
	for i := range post.Comments {
		userIDs[i] = post.Comments[i].UserID
	}
	profiles, err := loadProfiles(ctx, s.users, userIDs)
	if err != nil {
		return nil, err
	}

	comments := make([]models.CommentView, len(post.Comments))
	for i := range post.Comments {
		comments[i] = models.CommentView{Comment: post.Comments[i], User: profiles[post.Comments[i].UserID]}
	}
	return comments, nil
}

// DeleteComment removes a comment; only its author may do so.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID string, actorID uint) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Post not found")
		}
		return fmt.Errorf("load post: %w", err)
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		return notFound("Comment not found")
	}
	if comment.UserID != actorID {
		return forbidden("Not authorized to delete this comment")
	}

	if err := s.posts.RemoveComment(ctx, postID, commentID, actorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Comment not found")
		}
		return fmt.Errorf("remove comment: %w", err)
	}
	s.metrics.IncComment("delete")
	return nil
}

// DeletePost removes the post, then its image and the notifications pointing at it. The last two
// steps are best effort.
func (s *PostService) DeletePost(ctx context.Context, postID string, actorID uint) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Post not found")
		}
		return fmt.Errorf("load post: %w", err)
	}
	if post.AuthorID != actorID {
		return forbidden("Not authorized to delete this post")
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Post not found")
		}
		return fmt.Errorf("delete post: %w", err)
	}

	if post.Image != "" {
		s.removeImage(ctx, post.Image)
	}
	s.notifier.PurgeForPost(ctx, post.ID.Hex())
	return nil
}

func (s *PostService) removeImage(ctx context.Context, location string) {
	log := logging.FromContext(ctx)
	err := s.media.Delete(ctx, location)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		log.Info("post image already removed", "image", location)
	default:
		log.Warn("remove post image", "error", err, "image", location)
	}
}

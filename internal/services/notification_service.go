package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/socialnet/backend/internal/events"
	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/metrics"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/realtime"
	"github.com/anonto42/socialnet/backend/internal/repositories"
)

// NotificationPageSize caps the inbox listing.
const NotificationPageSize = 20

// Notifier is the emission side used by the friendship and post services.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification)
	PurgeForPost(ctx context.Context, postID string)
	PurgeForFriendship(ctx context.Context, friendshipID uint)
}

// NotificationService stores notifications, fans them out and serves the inbox.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	posts         repositories.PostRepository
	publisher     events.Publisher
	pusher        realtime.Pusher
	metrics       *metrics.Metrics
}

func NewNotificationService(
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	posts repositories.PostRepository,
	publisher events.Publisher,
	pusher realtime.Pusher,
	m *metrics.Metrics,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		posts:         posts,
		publisher:     publisher,
		pusher:        pusher,
		metrics:       m,
	}
}

// Notify persists n and fans it out. Notifications are a side effect of the action that caused
// them, so failures are logged and swallowed.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	log := logging.FromContext(ctx).With("notification_type", n.Type, "recipient_id", n.RecipientID)

	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		s.metrics.IncNotification(string(n.Type), metrics.StatusFailed)
		log.Error("store notification", "error", err)
		return
	}
	s.metrics.IncNotification(string(n.Type), metrics.StatusSuccess)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewNotificationCreated(n)); err != nil {
			log.Warn("publish notification event", "error", err, "notification_id", n.ID)
		}
	}

	if s.pusher != nil {
		view := models.NotificationView{Notification: *n, Sender: models.UserCompact{ID: n.SenderID}}
		if sender, err := s.users.GetUserByID(ctx, n.SenderID); err == nil {
			view.Sender = sender.ToCompact()
		}
		if n.PostID != nil {
			view.Post = s.previewPost(ctx, *n.PostID)
		}
		s.pusher.SendToUser(n.RecipientID, &realtime.Message{Event: "notification", Data: view})
	}
}

// previewPost falls back to a bare id when the post cannot be loaded.
func (s *NotificationService) previewPost(ctx context.Context, postID string) *models.PostPreview {
	preview := &models.PostPreview{ID: postID}
	if s.posts == nil {
		return preview
	}
	posts, err := s.posts.GetPostsByIDs(ctx, []string{postID})
	if err != nil {
		logging.FromContext(ctx).Warn("load notification post", "error", err, "post_id", postID)
		return preview
	}
	if len(posts) > 0 {
		preview.Content = posts[0].Content
	}
	return preview
}

// PurgeForPost drops notifications pointing at a deleted post.
func (s *NotificationService) PurgeForPost(ctx context.Context, postID string) {
	if n, err := s.notifications.DeleteByPost(ctx, postID); err != nil {
		logging.FromContext(ctx).Warn("purge post notifications", "error", err, "post_id", postID)
	} else if n > 0 {
		logging.FromContext(ctx).Debug("purged post notifications", "post_id", postID, "count", n)
	}
}

// PurgeForFriendship drops notifications pointing at a deleted friendship.
func (s *NotificationService) PurgeForFriendship(ctx context.Context, friendshipID uint) {
	if _, err := s.notifications.DeleteByFriendship(ctx, friendshipID); err != nil {
		logging.FromContext(ctx).Warn("purge friendship notifications", "error", err, "friendship_id", friendshipID)
	}
}

// List returns the newest notifications of recipientID with sender profiles and post previews.
// A post that has been deleted since keeps its id with no content.
func (s *NotificationService) List(ctx context.Context, recipientID uint) ([]models.NotificationView, error) {
	notifications, err := s.notifications.GetByRecipientID(ctx, recipientID, NotificationPageSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	senderIDs := make([]uint, 0, len(notifications))
	postIDs := make([]string, 0, len(notifications))
	for i := range notifications {
		senderIDs = append(senderIDs, notifications[i].SenderID)
		if notifications[i].PostID != nil {
			postIDs = append(postIDs, *notifications[i].PostID)
		}
	}

	profiles, err := loadProfiles(ctx, s.users, senderIDs)
	if err != nil {
		return nil, err
	}

	previews := make(map[string]*models.PostPreview, len(postIDs))
	if len(postIDs) > 0 {
		posts, err := s.posts.GetPostsByIDs(ctx, postIDs)
		if err != nil {
			return nil, fmt.Errorf("load notification posts: %w", err)
		}
		for i := range posts {
			id := posts[i].ID.Hex()
			previews[id] = &models.PostPreview{ID: id, Content: posts[i].Content}
		}
	}

	views := make([]models.NotificationView, len(notifications))
	for i, n := range notifications {
		views[i] = models.NotificationView{Notification: n, Sender: profiles[n.SenderID]}
		if n.PostID != nil {
			views[i].Post = previews[*n.PostID]
			if views[i].Post == nil {
				views[i].Post = &models.PostPreview{ID: *n.PostID}
			}
		}
	}
	return views, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	count, err := s.notifications.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags one of recipientID's notifications. Someone else's notification is NotFound.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, recipientID uint) error {
	if err := s.notifications.MarkAsRead(ctx, notificationID, recipientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Notification not found")
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	n, err := s.notifications.MarkAllAsRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, notificationID, recipientID uint) error {
	if err := s.notifications.Delete(ctx, notificationID, recipientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Notification not found")
		}
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

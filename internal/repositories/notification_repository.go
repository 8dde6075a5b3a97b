package repositories

import (
	"context"

	"github.com/anonto42/socialnet/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, recipientID uint) error
	MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error)
	Delete(ctx context.Context, notificationID, recipientID uint) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	DeleteByFriendship(ctx context.Context, friendshipID uint) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead flags a notification owned by recipientID; anything else is ErrNotFound.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) Delete(ctx context.Context, notificationID, recipientID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) DeleteByFriendship(ctx context.Context, friendshipID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("friendship_id = ?", friendshipID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

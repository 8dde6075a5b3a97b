package repositories

import (
	"context"
	"time"

	"github.com/anonto42/socialnet/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetByID(ctx context.Context, id uint) (*models.Friendship, error)
	FindBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error)
	Respond(ctx context.Context, id, recipientID uint, status models.FriendshipStatus) (*models.Friendship, error)
	DeleteAccepted(ctx context.Context, userA, userB uint) (*models.Friendship, error)
	DeleteRejectedBefore(ctx context.Context, userA, userB uint, before time.Time) (bool, error)
	ListAccepted(ctx context.Context, userID uint) ([]models.Friendship, error)
	ListPending(ctx context.Context, userID uint, direction models.RequestDirection) ([]models.Friendship, error)
	CounterpartIDs(ctx context.Context, userID uint) ([]uint, error)
	CountAccepted(ctx context.Context, userID uint) (int64, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// Create inserts a new request. The pair index rejects a second record for the same two users in
// either direction, which surfaces as ErrConflict.
func (r *PostgresFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if friendship.Status == "" {
		friendship.Status = models.FriendshipPending
	}
	return translateError(r.db.WithContext(ctx).Create(friendship).Error)
}

func (r *PostgresFriendshipRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &f, nil
}

// FindBetween returns the record for the unordered pair, whatever its status.
func (r *PostgresFriendshipRepository) FindBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error) {
	low, high := models.OrderedPair(userA, userB)
	var f models.Friendship
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&f).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &f, nil
}

// Respond moves a pending request addressed to recipientID into status. Anything else (unknown
// id, wrong recipient, no longer pending) is ErrNotFound.
func (r *PostgresFriendshipRepository) Respond(ctx context.Context, id, recipientID uint, status models.FriendshipStatus) (*models.Friendship, error) {
	var updated models.Friendship
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Friendship{}).
			Where("id = ? AND recipient_id = ? AND status = ?", id, recipientID, models.FriendshipPending).
			Updates(map[string]any{"status": status, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&updated, id).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &updated, nil
}

// DeleteAccepted removes the accepted record for the pair and returns it.
func (r *PostgresFriendshipRepository) DeleteAccepted(ctx context.Context, userA, userB uint) (*models.Friendship, error) {
	low, high := models.OrderedPair(userA, userB)
	var deleted models.Friendship
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_low_id = ? AND user_high_id = ? AND status = ?", low, high, models.FriendshipAccepted).
			First(&deleted).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND status = ?", deleted.ID, models.FriendshipAccepted).Delete(&models.Friendship{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &deleted, nil
}

// DeleteRejectedBefore clears a rejected record last touched before the cutoff, freeing the pair.
func (r *PostgresFriendshipRepository) DeleteRejectedBefore(ctx context.Context, userA, userB uint, before time.Time) (bool, error) {
	low, high := models.OrderedPair(userA, userB)
	res := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ? AND status = ? AND updated_at < ?", low, high, models.FriendshipRejected, before).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFriendshipRepository) ListAccepted(ctx context.Context, userID uint) ([]models.Friendship, error) {
	friendships := []models.Friendship{}
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? OR recipient_id = ?) AND status = ?", userID, userID, models.FriendshipAccepted).
		Order("updated_at DESC, id DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}

// ListPending returns pending requests sent by or addressed to userID, newest first.
func (r *PostgresFriendshipRepository) ListPending(ctx context.Context, userID uint, direction models.RequestDirection) ([]models.Friendship, error) {
	column := "recipient_id"
	if direction == models.DirectionSent {
		column = "requester_id"
	}
	friendships := []models.Friendship{}
	err := r.db.WithContext(ctx).
		Where(column+" = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC, id DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}

// CounterpartIDs lists the other party of every record touching userID, in any status.
func (r *PostgresFriendshipRepository) CounterpartIDs(ctx context.Context, userID uint) ([]uint, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Select("requester_id", "recipient_id").
		Where("requester_id = ? OR recipient_id = ?", userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].Counterpart(userID))
	}
	return ids, nil
}

func (r *PostgresFriendshipRepository) CountAccepted(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("(requester_id = ? OR recipient_id = ?) AND status = ?", userID, userID, models.FriendshipAccepted).
		Count(&count).Error
	return count, err
}

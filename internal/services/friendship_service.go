package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/metrics"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
)

// SuggestionLimit caps the friend suggestion list.
const SuggestionLimit = 10

// FriendshipService enforces the friend request lifecycle:
// none -> pending -> accepted | rejected, and accepted -> removed on unfriend.
type FriendshipService struct {
	friendships repositories.FriendshipRepository
	users       repositories.UserRepository
	notifier    Notifier
	metrics     *metrics.Metrics

	// rerequestCooldown is how long a rejection blocks the pair. Zero blocks forever.
	rerequestCooldown time.Duration
	now               func() time.Time
}

func NewFriendshipService(
	friendships repositories.FriendshipRepository,
	users repositories.UserRepository,
	notifier Notifier,
	m *metrics.Metrics,
	rerequestCooldown time.Duration,
) *FriendshipService {
	return &FriendshipService{
		friendships:       friendships,
		users:             users,
		notifier:          notifier,
		metrics:           m,
		rerequestCooldown: rerequestCooldown,
		now:               time.Now,
	}
}

// SendRequest creates a pending request from requesterID to recipientID and notifies the recipient.
func (s *FriendshipService) SendRequest(ctx context.Context, requesterID, recipientID uint) (*models.Friendship, error) {
	if requesterID == recipientID {
		s.metrics.IncFriendRequest(metrics.StatusFailed)
		return nil, invalid("Cannot send friend request to yourself")
	}

	if _, err := s.users.GetUserByID(ctx, recipientID); err != nil {
		s.metrics.IncFriendRequest(metrics.StatusFailed)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, fmt.Errorf("load recipient: %w", err)
	}

	if s.rerequestCooldown > 0 {
		cleared, err := s.friendships.DeleteRejectedBefore(ctx, requesterID, recipientID, s.now().Add(-s.rerequestCooldown))
		if err != nil {
			s.metrics.IncFriendRequest(metrics.StatusFailed)
			return nil, fmt.Errorf("clear expired rejection: %w", err)
		}
		if cleared {
			logging.FromContext(ctx).Info("expired rejection cleared", "requester_id", requesterID, "recipient_id", recipientID)
		}
	}

	friendship := &models.Friendship{
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      models.FriendshipPending,
	}
	if err := s.friendships.Create(ctx, friendship); err != nil {
		s.metrics.IncFriendRequest(metrics.StatusFailed)
		if errors.Is(err, repositories.ErrConflict) {
			return nil, conflict("Friend request already exists")
		}
		return nil, fmt.Errorf("create friend request: %w", err)
	}
	s.metrics.IncFriendRequest(metrics.StatusSuccess)

	friendshipID := friendship.ID
	s.notifier.Notify(ctx, &models.Notification{
		RecipientID:  recipientID,
		SenderID:     requesterID,
		Type:         models.NotificationFriendRequest,
		FriendshipID: &friendshipID,
	})
	return friendship, nil
}

// Accept is only open to the recipient of a pending request; everyone else sees NotFound.
func (s *FriendshipService) Accept(ctx context.Context, friendshipID, actorID uint) (*models.Friendship, error) {
	friendship, err := s.respond(ctx, friendshipID, actorID, models.FriendshipAccepted)
	if err != nil {
		return nil, err
	}

	id := friendship.ID
	s.notifier.Notify(ctx, &models.Notification{
		RecipientID:  friendship.RequesterID,
		SenderID:     actorID,
		Type:         models.NotificationFriendAccept,
		FriendshipID: &id,
	})
	return friendship, nil
}

// Reject has the same authorisation as Accept and emits no notification.
func (s *FriendshipService) Reject(ctx context.Context, friendshipID, actorID uint) (*models.Friendship, error) {
	return s.respond(ctx, friendshipID, actorID, models.FriendshipRejected)
}

func (s *FriendshipService) respond(ctx context.Context, friendshipID, actorID uint, status models.FriendshipStatus) (*models.Friendship, error) {
	action := "accept"
	if status == models.FriendshipRejected {
		action = "reject"
	}

	friendship, err := s.friendships.Respond(ctx, friendshipID, actorID, status)
	if err != nil {
		s.metrics.IncFriendResponse(action, metrics.StatusFailed)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Friend request not found")
		}
		return nil, fmt.Errorf("%s friend request: %w", action, err)
	}
	s.metrics.IncFriendResponse(action, metrics.StatusSuccess)
	return friendship, nil
}

// Unfriend removes an accepted friendship between the two users. The pair can send a fresh
// request afterwards.
func (s *FriendshipService) Unfriend(ctx context.Context, actorID, otherID uint) error {
	deleted, err := s.friendships.DeleteAccepted(ctx, actorID, otherID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Friendship not found")
		}
		return fmt.Errorf("unfriend: %w", err)
	}
	s.metrics.IncUnfriend()
	s.notifier.PurgeForFriendship(ctx, deleted.ID)
	return nil
}

// Status describes the relationship from actorID's point of view.
func (s *FriendshipService) Status(ctx context.Context, actorID, otherID uint) (*models.FriendshipStatusView, error) {
	friendship, err := s.friendships.FindBetween(ctx, actorID, otherID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.FriendshipStatusView{Status: models.RelationshipNone}, nil
		}
		return nil, fmt.Errorf("friendship status: %w", err)
	}

	view := &models.FriendshipStatusView{FriendshipID: &friendship.ID}
	switch friendship.Status {
	case models.FriendshipPending:
		if friendship.RequesterID == actorID {
			view.Status = models.RelationshipPendingSent
		} else {
			view.Status = models.RelationshipPendingReceived
		}
	default:
		view.Status = string(friendship.Status)
	}
	return view, nil
}

// ListFriends returns the profile of everyone userID has an accepted friendship with.
func (s *FriendshipService) ListFriends(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	friendships, err := s.friendships.ListAccepted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	ids := make([]uint, len(friendships))
	for i := range friendships {
		ids[i] = friendships[i].Counterpart(userID)
	}
	profiles, err := loadProfiles(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	friends := make([]models.UserCompact, len(ids))
	for i, id := range ids {
		friends[i] = profiles[id]
	}
	return friends, nil
}

// ListRequests returns pending requests in the given direction, newest first.
func (s *FriendshipService) ListRequests(ctx context.Context, userID uint, direction models.RequestDirection) ([]models.FriendRequestView, error) {
	if direction != models.DirectionSent && direction != models.DirectionReceived {
		return nil, invalid("Unknown request direction")
	}

	pending, err := s.friendships.ListPending(ctx, userID, direction)
	if err != nil {
		return nil, fmt.Errorf("list %s requests: %w", direction, err)
	}

	ids := make([]uint, len(pending))
	for i := range pending {
		ids[i] = pending[i].Counterpart(userID)
	}
	profiles, err := loadProfiles(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	requests := make([]models.FriendRequestView, len(pending))
	for i := range pending {
		requests[i] = models.FriendRequestView{Friendship: pending[i], User: profiles[ids[i]]}
	}
	return requests, nil
}

// Suggestions lists users with no relationship record of any status with userID.
func (s *FriendshipService) Suggestions(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	exclude, err := s.friendships.CounterpartIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load relationship counterparts: %w", err)
	}
	exclude = append(exclude, userID)

	users, err := s.users.ListUsersExcluding(ctx, exclude, SuggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}

	suggestions := make([]models.UserCompact, len(users))
	for i := range users {
		suggestions[i] = users[i].ToCompact()
	}
	return suggestions, nil
}

func (s *FriendshipService) FriendCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.friendships.CountAccepted(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count friends: %w", err)
	}
	return count, nil
}

package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lingolink/internal/models"
)

// FriendRequestRepository defines the interface for friend request data operations.
type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	// FindBetweenUsers returns the request between two users regardless of
	// direction or status, or nil if none exists.
	FindBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	GetRequestByID(ctx context.Context, requestID uint) (*models.FriendRequest, error)
	UpdateRequestStatus(ctx context.Context, requestID uint, status models.FriendRequestStatus) error
	GetPendingRequestsForUser(ctx context.Context, recipientUserID uint) ([]models.FriendRequest, error)
	GetPendingRequestsFromUser(ctx context.Context, requesterUserID uint) ([]models.FriendRequest, error)
	GetAcceptedRequestsInvolvingUser(ctx context.Context, userID uint) ([]models.FriendRequest, error)
}

type gormFriendRequestRepository struct {
	db *gorm.DB
}

func NewGormFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &gormFriendRequestRepository{db: db}
}

func (r *gormFriendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	request.EnsurePairOrder()
	return r.db.WithContext(ctx).Create(request).Error
}

// FindBetweenUsers checks for an existing request between two users in either
// direction. The canonical pair columns make this a single indexed lookup.
func (r *gormFriendRequestRepository) FindBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	low, high := userID1, userID2
	if low > high {
		low, high = high, low
	}

	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("pair_low_id = ? AND pair_high_id = ?", low, high).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No request found is not an error in this context
		}
		return nil, err
	}
	return &request, nil
}

func (r *gormFriendRequestRepository) GetRequestByID(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).First(&request, requestID).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormFriendRequestRepository) UpdateRequestStatus(ctx context.Context, requestID uint, status models.FriendRequestStatus) error {
	return r.db.WithContext(ctx).Model(&models.FriendRequest{}).Where("id = ?", requestID).Update("status", status).Error
}

func (r *gormFriendRequestRepository) GetPendingRequestsForUser(ctx context.Context, recipientUserID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("recipient_user_id = ? AND status = ?", recipientUserID, models.FriendRequestStatusPending).
		Find(&requests).Error
	return requests, err
}

func (r *gormFriendRequestRepository) GetPendingRequestsFromUser(ctx context.Context, requesterUserID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("requester_user_id = ? AND status = ?", requesterUserID, models.FriendRequestStatusPending).
		Find(&requests).Error
	return requests, err
}

func (r *gormFriendRequestRepository) GetAcceptedRequestsInvolvingUser(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(requester_user_id = ? OR recipient_user_id = ?) AND status = ?", userID, userID, models.FriendRequestStatusAccepted).
		Find(&requests).Error
	return requests, err
}

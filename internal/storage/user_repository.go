package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"lingolink/internal/models"
)

// summaryColumns are the fields projected into models.UserSummary.
var summaryColumns = []string{"id", "username", "nickname", "avatar_url", "native_language", "learning_language"}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.User, error)
	GetSummaryByID(ctx context.Context, id uint) (*models.UserSummary, error)
	GetSummariesByIDs(ctx context.Context, userIDs []uint) ([]*models.UserSummary, error)
	GetContactByID(ctx context.Context, id uint) (*models.UserContact, error)
	// GetRecommended returns onboarded users excluding the caller and every
	// ID in excludeIDs, capped at limit rows.
	GetRecommended(ctx context.Context, currentUserID uint, excludeIDs []uint, limit int) ([]*models.UserSummary, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create creates a new user record in the database.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by their ID.
func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err // Handles gorm.ErrRecordNotFound as well
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username.
func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user record in the database.
func (r *gormUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(user).Error
}

// SearchUsers performs a case-insensitive match on username and nickname,
// excluding the current user.
func (r *gormUserRepository) SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.User, error) {
	var users []models.User
	searchTerm := "%" + strings.ToLower(query) + "%"

	err := r.db.WithContext(ctx).
		Where("(LOWER(username) LIKE ? OR LOWER(nickname) LIKE ?) AND id != ?", searchTerm, searchTerm, currentUserID).
		// 明确选择需要的字段，避免泄露敏感信息
		Select(summaryColumns).
		Limit(10).
		Find(&users).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return users, nil
		}
		return nil, err
	}
	return users, nil
}

// GetSummaryByID retrieves the summary projection of a user by ID.
func (r *gormUserRepository) GetSummaryByID(ctx context.Context, id uint) (*models.UserSummary, error) {
	var summary models.UserSummary
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(summaryColumns).
		Where("id = ?", id).
		First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetSummariesByIDs retrieves summary projections for a list of user IDs.
func (r *gormUserRepository) GetSummariesByIDs(ctx context.Context, userIDs []uint) ([]*models.UserSummary, error) {
	var summaries []*models.UserSummary
	if len(userIDs) == 0 {
		return summaries, nil // Return empty slice if no IDs are provided
	}

	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(summaryColumns).
		Where("id IN ?", userIDs).
		Find(&summaries).Error
	if err != nil {
		// Don't return ErrRecordNotFound for batch fetches, just return potentially empty slice
		return nil, err
	}
	return summaries, nil
}

// GetContactByID retrieves the minimal name+avatar projection of a user.
func (r *gormUserRepository) GetContactByID(ctx context.Context, id uint) (*models.UserContact, error) {
	var contact models.UserContact
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "nickname", "avatar_url").
		Where("id = ?", id).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetRecommended returns onboarded users that are neither the caller nor in
// excludeIDs (the caller's current friends).
func (r *gormUserRepository) GetRecommended(ctx context.Context, currentUserID uint, excludeIDs []uint, limit int) ([]*models.UserSummary, error) {
	var summaries []*models.UserSummary
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(summaryColumns).
		Where("id != ? AND is_onboarded = ?", currentUserID, true)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

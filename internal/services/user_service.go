package services

import (
	"context"
	"errors"
	"fmt"

	"lingolink/internal/models"
	"lingolink/internal/storage"

	"gorm.io/gorm"
)

// ErrOnboardingIncomplete 表示引导信息缺少必填字段。
var ErrOnboardingIncomplete = errors.New("昵称、母语和学习语言不能为空")

// OnboardingInput 是完成引导流程所需的资料。
type OnboardingInput struct {
	Nickname         string
	Bio              string
	NativeLanguage   string
	LearningLanguage string
	Location         string
}

// UserService 定义了用户相关服务的接口。
type UserService interface {
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID uint, nickname, avatarURL, bio, location string) (*models.User, error)
	CompleteOnboarding(ctx context.Context, userID uint, input OnboardingInput) (*models.User, error)
	SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.User, error)
	GetPublicProfile(ctx context.Context, userID uint) (*models.UserSummary, error)
}

// userService 是 UserService 的实现。
type userService struct {
	userRepo storage.UserRepository
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetUserProfile 获取用户的个人资料。
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("获取用户 %d 失败: %w", userID, err)
	}
	user.PasswordHash = "" // 清理敏感信息
	return user, nil
}

// UpdateUserProfile 更新用户的个人资料。
func (s *userService) UpdateUserProfile(ctx context.Context, userID uint, nickname, avatarURL, bio, location string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("更新用户资料失败，用户 %d 未找到: %w", userID, err)
	}

	// 按需更新字段
	updated := false
	if nickname != "" && user.Nickname != nickname {
		user.Nickname = nickname
		updated = true
	}
	if avatarURL != "" && user.AvatarURL != avatarURL {
		user.AvatarURL = avatarURL
		updated = true
	}
	if bio != "" && user.Bio != bio {
		user.Bio = bio
		updated = true
	}
	if location != "" && user.Location != location {
		user.Location = location
		updated = true
	}

	if !updated {
		user.PasswordHash = ""
		return user, nil // 没有字段被更新
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("更新用户 %d 资料失败: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// CompleteOnboarding 填写语言交换资料并标记用户完成引导。
// 只有完成引导的用户才会出现在推荐列表中。
func (s *userService) CompleteOnboarding(ctx context.Context, userID uint, input OnboardingInput) (*models.User, error) {
	if input.Nickname == "" || input.NativeLanguage == "" || input.LearningLanguage == "" {
		return nil, ErrOnboardingIncomplete
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("完成引导失败，用户 %d 未找到: %w", userID, err)
	}

	user.Nickname = input.Nickname
	user.Bio = input.Bio
	user.NativeLanguage = input.NativeLanguage
	user.LearningLanguage = input.LearningLanguage
	user.Location = input.Location
	user.IsOnboarded = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("保存引导资料失败: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// SearchUsers 按用户名/昵称搜索用户，排除当前用户自己。
func (s *userService) SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.User, error) {
	users, err := s.userRepo.SearchUsers(ctx, query, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("搜索用户失败: %w", err)
	}
	return users, nil
}

// GetPublicProfile 返回其他用户的公开资料（摘要投影，不含敏感字段）。
func (s *userService) GetPublicProfile(ctx context.Context, userID uint) (*models.UserSummary, error) {
	summary, err := s.userRepo.GetSummaryByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("获取用户 %d 公开资料失败: %w", userID, err)
	}
	return summary, nil
}

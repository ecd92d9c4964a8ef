package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService serves profiles, avatars and subscription listings.
type UserService struct {
	db     *gorm.DB
	images *ImageService
}

var _ IUserService = (*UserService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB, images *ImageService) *UserService {
	return &UserService{db: db, images: images}
}

// GetUser returns a user as seen by viewerID.
func (s *UserService) GetUser(ctx context.Context, viewerID, id uint) (*types.UserResponse, error) {
	db := s.db.WithContext(ctx)
	user, err := findUser(db, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedSet(db, viewerID, []uint{id})
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user, subscribed[id])
	return &resp, nil
}

// ListUsers pages through all users ordered by username.
func (s *UserService) ListUsers(ctx context.Context, viewerID uint, page types.Pagination) ([]types.UserResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := db.Order("username").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := subscribedSet(db, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]types.UserResponse, len(users))
	for i := range users {
		result[i] = toUserResponse(&users[i], subscribed[users[i].ID])
	}
	return result, total, nil
}

// Subscriptions pages through the users userID follows, in follow order,
// each with up to recipesLimit recipes.
func (s *UserService) Subscriptions(ctx context.Context, userID uint, page types.Pagination, recipesLimit int) ([]types.UserWithRecipesResponse, int64, error) {
	db := s.db.WithContext(ctx)

	followed := func() *gorm.DB {
		return db.Model(&models.User{}).
			Joins("JOIN follows ON follows.following_id = users.id").
			Where("follows.user_id = ?", userID)
	}

	var total int64
	if err := followed().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := followed().
		Order("follows.id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	result, err := usersWithRecipes(db, userID, users, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// SetAvatar stores a new avatar image and returns its URL. The previous
// avatar file is removed.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, payload string) (string, error) {
	db := s.db.WithContext(ctx)
	user, err := findUser(db, userID)
	if err != nil {
		return "", err
	}

	var oldAvatar string
	if user.Avatar != nil {
		oldAvatar = *user.Avatar
	}

	url, err := s.images.Save(ctx, "users/avatars", "avatar", payload)
	if err != nil {
		return "", err
	}
	if err := db.Model(user).Update("avatar", url).Error; err != nil {
		s.images.Remove(ctx, url)
		return "", err
	}

	s.images.Remove(ctx, oldAvatar)
	return url, nil
}

// DeleteAvatar clears the avatar. It is a no-op when none is set.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	db := s.db.WithContext(ctx)
	user, err := findUser(db, userID)
	if err != nil {
		return err
	}
	if user.Avatar == nil {
		return nil
	}
	oldAvatar := *user.Avatar

	if err := db.Model(user).Update("avatar", nil).Error; err != nil {
		return err
	}
	s.images.Remove(ctx, oldAvatar)
	return nil
}

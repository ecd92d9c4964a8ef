package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var _ service.IRelationService = (*MockRelationService)(nil)

// MockRelationService is a mock implementation of service.IRelationService
type MockRelationService struct {
	mock.Mock
}

func (m *MockRelationService) shortRecipe(args mock.Arguments) (*types.RecipeShortResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeShortResponse), args.Error(1)
}

func (m *MockRelationService) AddFavorite(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error) {
	return m.shortRecipe(m.Called(ctx, userID, recipeID))
}

func (m *MockRelationService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRelationService) AddToShoppingCart(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error) {
	return m.shortRecipe(m.Called(ctx, userID, recipeID))
}

func (m *MockRelationService) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRelationService) Follow(ctx context.Context, userID, targetID uint, recipesLimit int) (*types.UserWithRecipesResponse, error) {
	args := m.Called(ctx, userID, targetID, recipesLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserWithRecipesResponse), args.Error(1)
}

func (m *MockRelationService) Unfollow(ctx context.Context, userID, targetID uint) error {
	return m.Called(ctx, userID, targetID).Error(0)
}

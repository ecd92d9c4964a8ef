package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var (
	_ service.IRecipeService   = (*MockRecipeService)(nil)
	_ service.IShoppingService = (*MockShoppingService)(nil)
)

// MockRecipeService is a mock implementation of service.IRecipeService
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, recipeID, callerID uint, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, recipeID, callerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, recipeID, callerID uint) error {
	return m.Called(ctx, recipeID, callerID).Error(0)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, viewerID, id uint) (*types.RecipeResponse, error) {
	args := m.Called(ctx, viewerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, viewerID uint, filter types.RecipeFilter, page types.Pagination) ([]types.RecipeResponse, int64, error) {
	args := m.Called(ctx, viewerID, filter, page)
	results, _ := args.Get(0).([]types.RecipeResponse)
	return results, args.Get(1).(int64), args.Error(2)
}

// MockShoppingService is a mock implementation of service.IShoppingService
type MockShoppingService struct {
	mock.Mock
}

func (m *MockShoppingService) DownloadShoppingCart(ctx context.Context, userID uint) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

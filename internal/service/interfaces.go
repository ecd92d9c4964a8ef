package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// A viewer ID of 0 denotes an anonymous caller throughout this package.

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	SetPassword(ctx context.Context, userID uint, current, next string) error
}

// IUserService defines user profile and subscription reads
type IUserService interface {
	GetUser(ctx context.Context, viewerID, id uint) (*types.UserResponse, error)
	ListUsers(ctx context.Context, viewerID uint, page types.Pagination) ([]types.UserResponse, int64, error)
	Subscriptions(ctx context.Context, userID uint, page types.Pagination, recipesLimit int) ([]types.UserWithRecipesResponse, int64, error)
	SetAvatar(ctx context.Context, userID uint, payload string) (string, error)
	DeleteAvatar(ctx context.Context, userID uint) error
}

// IRecipeService defines the recipe write pipeline and recipe reads
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*types.RecipeResponse, error)
	UpdateRecipe(ctx context.Context, recipeID, callerID uint, req *types.RecipeRequest) (*types.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, recipeID, callerID uint) error
	GetRecipe(ctx context.Context, viewerID, id uint) (*types.RecipeResponse, error)
	ListRecipes(ctx context.Context, viewerID uint, filter types.RecipeFilter, page types.Pagination) ([]types.RecipeResponse, int64, error)
}

// IRelationService defines the favorite, shopping cart and follow toggles
type IRelationService interface {
	AddFavorite(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	AddToShoppingCart(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error)
	RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error
	Follow(ctx context.Context, userID, targetID uint, recipesLimit int) (*types.UserWithRecipesResponse, error)
	Unfollow(ctx context.Context, userID, targetID uint) error
}

// IShoppingService renders the aggregated shopping list
type IShoppingService interface {
	DownloadShoppingCart(ctx context.Context, userID uint) (string, error)
}

// IShortLinkService assigns and resolves recipe short links
type IShortLinkService interface {
	EnsureShortLink(ctx context.Context, recipeID uint) (string, error)
	Resolve(ctx context.Context, token string) (uint, error)
}

// IReferenceService serves tags and ingredients
type IReferenceService interface {
	ListTags(ctx context.Context) ([]types.TagResponse, error)
	GetTag(ctx context.Context, id uint) (*types.TagResponse, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]types.IngredientResponse, error)
	GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error)
}

package service

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RelationService toggles favorite, shopping cart and follow edges.
// Duplicate detection relies on the unique indexes: adds insert directly and
// translate a unique violation into a ConflictError.
type RelationService struct {
	db *gorm.DB
}

var _ IRelationService = (*RelationService)(nil)

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error) {
	return addRecipeRelation(ctx, s.db, "favorite", &models.Favorite{UserID: userID, RecipeID: recipeID}, recipeID,
		"recipe already in favorites")
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return removeRecipeRelation(ctx, s.db, "favorite", &models.Favorite{}, userID, recipeID,
		"recipe is not in favorites")
}

func (s *RelationService) AddToShoppingCart(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error) {
	return addRecipeRelation(ctx, s.db, "shopping_cart", &models.ShoppingCartItem{UserID: userID, RecipeID: recipeID}, recipeID,
		"recipe already in shopping cart")
}

func (s *RelationService) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return removeRecipeRelation(ctx, s.db, "shopping_cart", &models.ShoppingCartItem{}, userID, recipeID,
		"recipe is not in shopping cart")
}

// Follow subscribes userID to targetID and returns the target with up to
// recipesLimit recipes.
func (s *RelationService) Follow(ctx context.Context, userID, targetID uint, recipesLimit int) (resp *types.UserWithRecipesResponse, err error) {
	defer func() { metrics.RelationTogglesTotal.WithLabelValues("follow", "add", outcome(err)).Inc() }()

	if userID == targetID {
		return nil, newValidationError("user", "cannot follow yourself")
	}

	db := s.db.WithContext(ctx)
	target, err := findUser(db, targetID)
	if err != nil {
		return nil, err
	}

	if err := addPair(db, &models.Follow{UserID: userID, FollowingID: targetID}, "already subscribed to this user"); err != nil {
		return nil, err
	}

	projected, err := usersWithRecipes(db, userID, []models.User{*target}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &projected[0], nil
}

func (s *RelationService) Unfollow(ctx context.Context, userID, targetID uint) (err error) {
	defer func() { metrics.RelationTogglesTotal.WithLabelValues("follow", "remove", outcome(err)).Inc() }()

	db := s.db.WithContext(ctx)
	if _, err := findUser(db, targetID); err != nil {
		return err
	}
	return removePair(db, &models.Follow{}, "user_id = ? AND following_id = ?", []any{userID, targetID},
		"not subscribed to this user")
}

func addRecipeRelation[T any](ctx context.Context, db *gorm.DB, relation string, row *T, recipeID uint, conflict string) (resp *types.RecipeShortResponse, err error) {
	defer func() { metrics.RelationTogglesTotal.WithLabelValues(relation, "add", outcome(err)).Inc() }()

	db = db.WithContext(ctx)
	recipe, err := findRecipe(db, recipeID)
	if err != nil {
		return nil, err
	}
	if err := addPair(db, row, conflict); err != nil {
		return nil, err
	}
	short := toRecipeShort(recipe)
	return &short, nil
}

func removeRecipeRelation[T any](ctx context.Context, db *gorm.DB, relation string, model *T, userID, recipeID uint, missing string) (err error) {
	defer func() { metrics.RelationTogglesTotal.WithLabelValues(relation, "remove", outcome(err)).Inc() }()

	db = db.WithContext(ctx)
	if _, err := findRecipe(db, recipeID); err != nil {
		return err
	}
	return removePair(db, model, "user_id = ? AND recipe_id = ?", []any{userID, recipeID}, missing)
}

// addPair inserts a relation row; a unique violation means it already exists.
func addPair[T any](db *gorm.DB, row *T, conflict string) error {
	err := db.Omit(clause.Associations).Create(row).Error
	if database.IsUniqueViolation(err) {
		return &ConflictError{Message: conflict}
	}
	return err
}

// removePair deletes the relation row matched by query.
func removePair[T any](db *gorm.DB, model *T, query string, args []any, missing string) error {
	res := db.Where(query, args...).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &RelationNotFoundError{Message: missing}
	}
	return nil
}

func findRecipe(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "recipe", ID: id}
		}
		return nil, err
	}
	return &recipe, nil
}

func findUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: id}
		}
		return nil, err
	}
	return &user, nil
}

// outcome labels toggle metrics.
func outcome(err error) string {
	var conflict *ConflictError
	var missing *RelationNotFoundError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &missing):
		return "missing"
	default:
		return "error"
	}
}

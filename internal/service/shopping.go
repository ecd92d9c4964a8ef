package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ShoppingLine is the total amount of one ingredient across the cart.
type ShoppingLine struct {
	Name  string
	Unit  string
	Total int64
}

// ShoppingService aggregates the ingredients of all recipes in a user's cart.
type ShoppingService struct {
	db *gorm.DB
}

var _ IShoppingService = (*ShoppingService)(nil)

func NewShoppingService(db *gorm.DB) *ShoppingService {
	return &ShoppingService{db: db}
}

// Aggregate sums amounts per (ingredient name, unit) over the user's cart,
// ordered by ingredient name.
func (s *ShoppingService) Aggregate(ctx context.Context, userID uint) ([]ShoppingLine, error) {
	var lines []ShoppingLine
	err := s.db.WithContext(ctx).
		Table("shopping_cart_items").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_cart_items.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping cart: %w", err)
	}
	return lines, nil
}

// DownloadShoppingCart renders the user's aggregated shopping list as text.
func (s *ShoppingService) DownloadShoppingCart(ctx context.Context, userID uint) (string, error) {
	user, err := findUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return "", err
	}
	lines, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}
	return RenderShoppingList(user.Username, lines), nil
}

// RenderShoppingList formats a header line followed by one line per ingredient.
func RenderShoppingList(username string, lines []ShoppingLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for %s\n", username)
	for _, l := range lines {
		fmt.Fprintf(&b, "- %s (%s) - %d\n", l.Name, l.Unit, l.Total)
	}
	return b.String()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
	links  *ShortLinkService
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance. links may be nil;
// when set, a deleted recipe's short link is evicted from its cache.
func NewRecipeService(db *gorm.DB, images *ImageService, links *ShortLinkService) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
		links:  links,
	}
}

// CreateRecipe validates req and persists the recipe with its tags,
// ingredient amounts and short link in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (resp *types.RecipeResponse, err error) {
	defer func() { metrics.RecipeWritesTotal.WithLabelValues("create", metrics.Outcome(err)).Inc() }()

	if err := validateRecipeRequest(req, false); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	tags, err := loadReferences(db, req)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.images.Save(ctx, "recipes/images", "image", *req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        *req.Name,
		Text:        *req.Text,
		CookingTime: *req.CookingTime,
		Image:       imageURL,
		PubDate:     time.Now().UTC(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := replaceChildren(tx, &recipe, tags, req.Ingredients); err != nil {
			return err
		}
		_, err := assignShortLink(tx, recipe.ID)
		return err
	})
	if err != nil {
		s.images.Remove(ctx, imageURL)
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.GetRecipe(ctx, authorID, recipe.ID)
}

// UpdateRecipe applies a partial update. Only the author may update; tags and
// ingredients are always replaced with the submitted sets.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeID, callerID uint, req *types.RecipeRequest) (resp *types.RecipeResponse, err error) {
	defer func() { metrics.RecipeWritesTotal.WithLabelValues("update", metrics.Outcome(err)).Inc() }()

	db := s.db.WithContext(ctx)
	recipe, err := s.findOwned(db, recipeID, callerID)
	if err != nil {
		return nil, err
	}

	if err := validateRecipeRequest(req, true); err != nil {
		return nil, err
	}
	tags, err := loadReferences(db, req)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}

	oldImage := recipe.Image
	newImage := ""
	if req.Image != nil {
		newImage, err = s.images.Save(ctx, "recipes/images", "image", *req.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = newImage
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return err
			}
		}
		return replaceChildren(tx, recipe, tags, req.Ingredients)
	})
	if err != nil {
		s.images.Remove(ctx, newImage)
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	if newImage != "" {
		s.images.Remove(ctx, oldImage)
	}

	return s.GetRecipe(ctx, callerID, recipe.ID)
}

// DeleteRecipe removes a recipe and everything that references it. Only the
// author may delete.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID, callerID uint) (err error) {
	defer func() { metrics.RecipeWritesTotal.WithLabelValues("delete", metrics.Outcome(err)).Inc() }()

	db := s.db.WithContext(ctx)
	recipe, err := s.findOwned(db, recipeID, callerID)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		for _, child := range []any{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartItem{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if s.links != nil && recipe.ShortLink != nil {
		s.links.Evict(ctx, *recipe.ShortLink)
	}
	s.images.Remove(ctx, recipe.Image)
	return nil
}

// GetRecipe retrieves a recipe by ID as seen by viewerID
func (s *RecipeService) GetRecipe(ctx context.Context, viewerID, id uint) (*types.RecipeResponse, error) {
	recipes, err := s.loadRecipes(s.db.WithContext(ctx), viewerID, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, &NotFoundError{Resource: "recipe", ID: id}
	}
	return &recipes[0], nil
}

// ListRecipes returns one page of recipes, newest first, and the total count.
func (s *RecipeService) ListRecipes(ctx context.Context, viewerID uint, filter types.RecipeFilter, page types.Pagination) ([]types.RecipeResponse, int64, error) {
	db := s.db.WithContext(ctx)

	filtered := func() *gorm.DB {
		q := db.Model(&models.Recipe{})
		if filter.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.Tags) > 0 {
			q = q.Where("recipes.id IN (?)", db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.Tags))
		}
		// relation filters are meaningless without a caller
		if viewerID != 0 && filter.Favorited {
			q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", viewerID))
		}
		if viewerID != 0 && filter.InShoppingCart {
			q = q.Where("recipes.id IN (?)", db.Model(&models.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", viewerID))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uint
	if err := filtered().
		Order(models.RecipeOrder).
		Offset(page.Offset()).
		Limit(page.Limit).
		Pluck("recipes.id", &ids).Error; err != nil {
		return nil, 0, err
	}

	recipes, err := s.loadRecipes(db, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (s *RecipeService) findOwned(db *gorm.DB, recipeID, callerID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "recipe", ID: recipeID}
		}
		return nil, err
	}
	if recipe.AuthorID != callerID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

// replaceChildren makes the recipe's tag set and ingredient amounts exactly
// the submitted ones.
func replaceChildren(tx *gorm.DB, recipe *models.Recipe, tags []models.Tag, ingredients []types.IngredientAmount) error {
	if err := tx.Model(recipe).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("failed to replace tags: %w", err)
	}

	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to clear ingredients: %w", err)
	}

	rows := make([]models.RecipeIngredient, len(ingredients))
	for i, item := range ingredients {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert ingredients: %w", err)
	}
	return nil
}

// loadRecipes reads recipes by id, preserving the order of ids, with the
// viewer-relative flags filled in.
func (s *RecipeService) loadRecipes(db *gorm.DB, viewerID uint, ids []uint) ([]types.RecipeResponse, error) {
	if len(ids) == 0 {
		return []types.RecipeResponse{}, nil
	}

	var recipes []models.Recipe
	err := db.
		Preload("Author").
		Preload("Tags", func(q *gorm.DB) *gorm.DB { return q.Order("tags.name") }).
		Preload("Ingredients", func(q *gorm.DB) *gorm.DB { return q.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient").
		Where("id IN ?", ids).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	favorited, err := idSet(db, &models.Favorite{}, "recipe_id", viewerID, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := idSet(db, &models.ShoppingCartItem{}, "recipe_id", viewerID, ids)
	if err != nil {
		return nil, err
	}
	authorIDs := make([]uint, len(recipes))
	for i := range recipes {
		authorIDs[i] = recipes[i].AuthorID
	}
	subscribed, err := subscribedSet(db, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.Recipe, len(recipes))
	for i := range recipes {
		byID[recipes[i].ID] = &recipes[i]
	}

	result := make([]types.RecipeResponse, 0, len(recipes))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			continue
		}

		tags := make([]types.TagResponse, len(r.Tags))
		for i, t := range r.Tags {
			tags[i] = types.TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
		}
		ingredients := make([]types.RecipeIngredientResponse, len(r.Ingredients))
		for i, ri := range r.Ingredients {
			ingredients[i] = types.RecipeIngredientResponse{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}

		result = append(result, types.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           toUserResponse(&r.Author, subscribed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		})
	}
	return result, nil
}

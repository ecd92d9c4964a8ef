package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const maxRecipeNameLength = 256

// recipeValidator checks one aspect of a recipe request. partial is true for
// PATCH, where scalar fields may be omitted.
type recipeValidator func(req *types.RecipeRequest, partial bool, verr *ValidationError)

var recipeValidators = []recipeValidator{
	validateRecipeName,
	validateRecipeText,
	validateCookingTime,
	validateRecipeImage,
	validateRecipeTags,
	validateRecipeIngredients,
}

func validateRecipeRequest(req *types.RecipeRequest, partial bool) error {
	verr := &ValidationError{}
	for _, validate := range recipeValidators {
		validate(req, partial, verr)
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func validateRecipeName(req *types.RecipeRequest, partial bool, verr *ValidationError) {
	switch {
	case req.Name == nil:
		if !partial {
			verr.add("name", "this field is required")
		}
	case strings.TrimSpace(*req.Name) == "":
		verr.add("name", "this field may not be blank")
	case utf8.RuneCountInString(*req.Name) > maxRecipeNameLength:
		verr.add("name", fmt.Sprintf("ensure this field has no more than %d characters", maxRecipeNameLength))
	}
}

func validateRecipeText(req *types.RecipeRequest, partial bool, verr *ValidationError) {
	switch {
	case req.Text == nil:
		if !partial {
			verr.add("text", "this field is required")
		}
	case strings.TrimSpace(*req.Text) == "":
		verr.add("text", "this field may not be blank")
	}
}

func validateCookingTime(req *types.RecipeRequest, partial bool, verr *ValidationError) {
	switch {
	case req.CookingTime == nil:
		if !partial {
			verr.add("cooking_time", "this field is required")
		}
	case *req.CookingTime < 1:
		verr.add("cooking_time", "cooking time must be at least 1 minute")
	}
}

// Image content is checked when it is decoded.
func validateRecipeImage(req *types.RecipeRequest, partial bool, verr *ValidationError) {
	switch {
	case req.Image == nil:
		if !partial {
			verr.add("image", "this field is required")
		}
	case strings.TrimSpace(*req.Image) == "":
		verr.add("image", "this field may not be blank")
	}
}

// Tags and ingredients are required on every write, PATCH included.
func validateRecipeTags(req *types.RecipeRequest, _ bool, verr *ValidationError) {
	if req.Tags == nil {
		verr.add("tags", "this field is required")
		return
	}
	if len(req.Tags) == 0 {
		verr.add("tags", "at least one tag is required")
		return
	}
	seen := make(map[uint]bool, len(req.Tags))
	for _, id := range req.Tags {
		if seen[id] {
			verr.add("tags", fmt.Sprintf("duplicate tag %d", id))
			return
		}
		seen[id] = true
	}
}

func validateRecipeIngredients(req *types.RecipeRequest, _ bool, verr *ValidationError) {
	if req.Ingredients == nil {
		verr.add("ingredients", "this field is required")
		return
	}
	if len(req.Ingredients) == 0 {
		verr.add("ingredients", "at least one ingredient is required")
		return
	}
	seen := make(map[uint]bool, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if seen[item.ID] {
			verr.add("ingredients", fmt.Sprintf("duplicate ingredient %d", item.ID))
			return
		}
		seen[item.ID] = true
		if item.Amount < 1 {
			verr.add("ingredients", fmt.Sprintf("amount of ingredient %d must be at least 1", item.ID))
			return
		}
	}
}

// loadReferences fetches the submitted tags and verifies every ingredient
// exists. Unknown ids are a validation error on the corresponding field.
func loadReferences(db *gorm.DB, req *types.RecipeRequest) ([]models.Tag, error) {
	var tags []models.Tag
	if err := db.Where("id IN ?", req.Tags).Find(&tags).Error; err != nil {
		return nil, err
	}
	if missing := missingIDs(req.Tags, tagIDs(tags)); len(missing) > 0 {
		return nil, newValidationError("tags", fmt.Sprintf("tags do not exist: %v", missing))
	}

	ingredientIDs := make([]uint, len(req.Ingredients))
	for i, item := range req.Ingredients {
		ingredientIDs[i] = item.ID
	}
	var found []uint
	if err := db.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	if missing := missingIDs(ingredientIDs, found); len(missing) > 0 {
		return nil, newValidationError("ingredients", fmt.Sprintf("ingredients do not exist: %v", missing))
	}

	return tags, nil
}

func tagIDs(tags []models.Tag) []uint {
	ids := make([]uint, len(tags))
	for i := range tags {
		ids[i] = tags[i].ID
	}
	return ids
}

func missingIDs(want, have []uint) []uint {
	present := make(map[uint]bool, len(have))
	for _, id := range have {
		present[id] = true
	}
	var missing []uint
	for _, id := range want {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

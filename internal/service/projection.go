package service

import (
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

func toUserResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       u.Avatar,
	}
}

func toRecipeShort(r *models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// idSet returns the subset of ids found in column of the rows of model that
// belong to viewerID. It is empty for anonymous viewers.
func idSet(db *gorm.DB, model any, column string, viewerID uint, ids []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if viewerID == 0 || len(ids) == 0 {
		return set, nil
	}

	var found []uint
	if err := db.Model(model).
		Where("user_id = ? AND "+column+" IN ?", viewerID, ids).
		Pluck(column, &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		set[id] = true
	}
	return set, nil
}

func subscribedSet(db *gorm.DB, viewerID uint, userIDs []uint) (map[uint]bool, error) {
	return idSet(db, &models.Follow{}, "following_id", viewerID, userIDs)
}

// usersWithRecipes builds the followed-user projection: each user with up to
// recipesLimit of their newest recipes (all when recipesLimit <= 0) and the
// total recipe count.
func usersWithRecipes(db *gorm.DB, viewerID uint, users []models.User, recipesLimit int) ([]types.UserWithRecipesResponse, error) {
	if len(users) == 0 {
		return []types.UserWithRecipesResponse{}, nil
	}

	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}

	subscribed, err := subscribedSet(db, viewerID, ids)
	if err != nil {
		return nil, err
	}

	var counts []struct {
		AuthorID uint
		Total    int64
	}
	if err := db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	countByAuthor := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByAuthor[c.AuthorID] = c.Total
	}

	result := make([]types.UserWithRecipesResponse, len(users))
	for i := range users {
		q := db.Where("author_id = ?", users[i].ID).Order(models.RecipeOrder)
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, err
		}

		previews := make([]types.RecipeShortResponse, len(recipes))
		for j := range recipes {
			previews[j] = toRecipeShort(&recipes[j])
		}

		result[i] = types.UserWithRecipesResponse{
			UserResponse: toUserResponse(&users[i], subscribed[users[i].ID]),
			Recipes:      previews,
			RecipesCount: countByAuthor[users[i].ID],
		}
	}
	return result, nil
}

package api_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func recipeBody(tagID, ingredientID uint) map[string]any {
	return map[string]any{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 15,
		"image":        testhelpers.TestPNG,
		"tags":         []uint{tagID},
		"ingredients":  []map[string]any{{"id": ingredientID, "amount": 200}},
	}
}

func TestCreateRecipe(t *testing.T) {
	srv := setupServer(t)
	_, token := srv.userWithToken(t, "chef")
	tag := testhelpers.CreateTag(t, srv.db, "Breakfast", "breakfast")
	flour := testhelpers.CreateIngredient(t, srv.db, "flour", "g")

	w := srv.do(t, http.MethodPost, "/api/recipes/", token, recipeBody(tag.ID, flour.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "Pancakes", body["name"])
	assert.Equal(t, false, body["is_favorited"])
	assert.Equal(t, false, body["is_in_shopping_cart"])

	tags := body["tags"].([]any)
	require.Len(t, tags, 1)
	assert.Equal(t, "breakfast", tags[0].(map[string]any)["slug"])

	ingredients := body["ingredients"].([]any)
	require.Len(t, ingredients, 1)
	first := ingredients[0].(map[string]any)
	assert.Equal(t, "flour", first["name"])
	assert.Equal(t, "g", first["measurement_unit"])
	assert.Equal(t, float64(200), first["amount"])

	author := body["author"].(map[string]any)
	assert.Equal(t, "chef", author["username"])
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	srv := setupServer(t)
	w := srv.do(t, http.MethodPost, "/api/recipes/", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRecipeValidationErrors(t *testing.T) {
	srv := setupServer(t)
	_, token := srv.userWithToken(t, "chef")

	w := srv.do(t, http.MethodPost, "/api/recipes/", token, map[string]any{"name": "No children"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, "validation failed", body["error"])
	fields := body["fields"].(map[string]any)
	for _, field := range []string{"text", "cooking_time", "image", "tags", "ingredients"} {
		assert.Contains(t, fields, field)
	}
}

func TestUpdateRecipeAuthorization(t *testing.T) {
	srv := setupServer(t)
	author, authorToken := srv.userWithToken(t, "author")
	_, otherToken := srv.userWithToken(t, "other")
	tag := testhelpers.CreateTag(t, srv.db, "Dinner", "dinner")
	salt := testhelpers.CreateIngredient(t, srv.db, "salt", "g")
	recipe := testhelpers.CreateRecipe(t, srv.db, author, "soup", []*models.Tag{tag}, map[uint]int{salt.ID: 5})

	patch := map[string]any{
		"name":        "Better soup",
		"tags":        []uint{tag.ID},
		"ingredients": []map[string]any{{"id": salt.ID, "amount": 3}},
	}
	path := fmt.Sprintf("/api/recipes/%d/", recipe.ID)

	w := srv.do(t, http.MethodPatch, path, otherToken, patch)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPatch, path, authorToken, patch)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Better soup", decode(t, w)["name"])

	w = srv.do(t, http.MethodDelete, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodDelete, path, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecipesPagination(t *testing.T) {
	srv := setupServer(t)
	author := testhelpers.CreateUser(t, srv.db, "author")
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, srv.db, author, fmt.Sprintf("recipe-%d", i), nil, nil)
	}

	w := srv.do(t, http.MethodGet, "/api/recipes/?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(3), body["count"])
	assert.Len(t, body["results"], 2)
	assert.Equal(t, testBaseURL+"/api/recipes/?limit=2&page=2", body["next"])
	assert.Nil(t, body["previous"])

	w = srv.do(t, http.MethodGet, "/api/recipes/?limit=2&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["results"], 1)
	assert.Nil(t, body["next"])
	assert.Equal(t, testBaseURL+"/api/recipes/?limit=2", body["previous"])

	w = srv.do(t, http.MethodGet, "/api/recipes/?limit=2&page=3", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"invalid page"}`, w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/recipes/?page=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmptyFirstPageIsOK(t *testing.T) {
	srv := setupServer(t)

	w := srv.do(t, http.MethodGet, "/api/recipes/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(0), body["count"])
	assert.Empty(t, body["results"])
}

func TestFavoriteAndShoppingCartToggles(t *testing.T) {
	srv := setupServer(t)
	author := testhelpers.CreateUser(t, srv.db, "author")
	_, token := srv.userWithToken(t, "fan")
	recipe := testhelpers.CreateRecipe(t, srv.db, author, "soup", nil, nil)

	for _, relation := range []string{"favorite", "shopping_cart"} {
		t.Run(relation, func(t *testing.T) {
			path := fmt.Sprintf("/api/recipes/%d/%s/", recipe.ID, relation)

			w := srv.do(t, http.MethodPost, path, token, nil)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, float64(recipe.ID), body["id"])
			assert.Equal(t, "soup", body["name"])

			w = srv.do(t, http.MethodPost, path, token, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			w = srv.do(t, http.MethodDelete, path, token, nil)
			assert.Equal(t, http.StatusNoContent, w.Code)

			w = srv.do(t, http.MethodDelete, path, token, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			w = srv.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/9999/%s/", relation), token, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestRecipeFlagsForViewer(t *testing.T) {
	srv := setupServer(t)
	author := testhelpers.CreateUser(t, srv.db, "author")
	_, token := srv.userWithToken(t, "fan")
	recipe := testhelpers.CreateRecipe(t, srv.db, author, "soup", nil, nil)

	w := srv.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite/", recipe.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/recipes/%d/", recipe.ID)
	assert.Equal(t, true, decode(t, srv.do(t, http.MethodGet, path, token, nil))["is_favorited"])
	assert.Equal(t, false, decode(t, srv.do(t, http.MethodGet, path, "", nil))["is_favorited"])

	w = srv.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", token, nil)
	assert.Equal(t, float64(1), decode(t, w)["count"])
}

func TestDownloadShoppingCart(t *testing.T) {
	srv := setupServer(t)
	user, token := srv.userWithToken(t, "cook")
	salt := testhelpers.CreateIngredient(t, srv.db, "salt", "g")
	soup := testhelpers.CreateRecipe(t, srv.db, user, "soup", nil, map[uint]int{salt.ID: 5})
	stew := testhelpers.CreateRecipe(t, srv.db, user, "stew", nil, map[uint]int{salt.ID: 3})

	for _, r := range []*models.Recipe{soup, stew} {
		w := srv.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", r.ID), token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := srv.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "Shopping list for cook\n- salt (g) - 8\n", w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShortLinkFlow(t *testing.T) {
	srv := setupServer(t)
	author := testhelpers.CreateUser(t, srv.db, "author")
	recipe := testhelpers.CreateRecipe(t, srv.db, author, "soup", nil, nil)

	w := srv.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d/get-link/", recipe.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	link, _ := decode(t, w)["short-link"].(string)
	require.True(t, strings.HasPrefix(link, testBaseURL+"/"), link)

	path := strings.TrimPrefix(link, testBaseURL)
	w = srv.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("%s/recipes/%d/", testBaseURL, recipe.ID), w.Header().Get("Location"))

	w = srv.do(t, http.MethodGet, "/ZZZZZZZZZZ/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/api/recipes/9999/get-link/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

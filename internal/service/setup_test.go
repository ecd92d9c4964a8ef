package service_test

import (
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type testEnv struct {
	db        *gorm.DB
	mediaDir  string
	images    *service.ImageService
	recipes   *service.RecipeService
	relations *service.RelationService
	shopping  *service.ShoppingService
	links     *service.ShortLinkService
	users     *service.UserService
	auth      *service.AuthService
	reference *service.ReferenceService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	mediaDir := t.TempDir()
	store, err := storage.NewLocalStore(mediaDir, "/media")
	require.NoError(t, err)
	images := service.NewImageService(store)
	links := service.NewShortLinkService(db, nil, time.Hour)

	return &testEnv{
		db:        db,
		mediaDir:  mediaDir,
		images:    images,
		recipes:   service.NewRecipeService(db, images, links),
		relations: service.NewRelationService(db),
		shopping:  service.NewShoppingService(db),
		links:     links,
		users:     service.NewUserService(db, images),
		auth:      service.NewAuthService(db, "test-secret", time.Hour, nil),
		reference: service.NewReferenceService(db),
	}
}

// storedFiles lists the files currently in the media directory.
func (e *testEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(e.mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func ptr[T any](v T) *T {
	return &v
}

func recipeRequest(name string, tags []uint, ingredients ...types.IngredientAmount) *types.RecipeRequest {
	return &types.RecipeRequest{
		Name:        ptr(name),
		Text:        ptr("Mix and bake."),
		CookingTime: ptr(30),
		Image:       ptr(testhelpers.TestPNG),
		Tags:        tags,
		Ingredients: ingredients,
	}
}

func firstPage() types.Pagination {
	return types.Pagination{Page: 1, Limit: 10}
}

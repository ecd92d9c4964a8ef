package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, "migrations"))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestRunMigrationsCreatesSchema(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"users", "tags", "ingredients", "recipes", "recipe_tags",
		"recipe_ingredients", "favorites", "shopping_cart_items", "follows"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.NoError(t, HealthCheck(context.Background(), db))
}

func TestUniqueViolationDetected(t *testing.T) {
	db := openTestDB(t)

	tag := models.Tag{Name: "Breakfast", Slug: "breakfast"}
	require.NoError(t, db.Create(&tag).Error)

	err := db.Create(&models.Tag{Name: "Breakfast", Slug: "morning"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestFollowSelfRejectedByCheck(t *testing.T) {
	db := openTestDB(t)

	user := models.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "A", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	err := db.Omit("User", "Following").Create(&models.Follow{UserID: user.ID, FollowingID: user.ID}).Error
	assert.Error(t, err)
	assert.False(t, IsUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
}

func TestSQLiteLowerFoldsUnicode(t *testing.T) {
	db := openTestDB(t)

	var lowered string
	require.NoError(t, db.Raw("SELECT lower(?)", "СОЛЬ Ärger").Scan(&lowered).Error)
	assert.Equal(t, "соль ärger", lowered)
}

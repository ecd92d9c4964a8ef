package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestGetAndListUsers(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	bob := testhelpers.CreateUser(t, env.db, "bob")
	ann := testhelpers.CreateUser(t, env.db, "ann")
	_, err := env.relations.Follow(ctx, ann.ID, bob.ID, 0)
	require.NoError(t, err)

	got, err := env.users.GetUser(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.True(t, got.IsSubscribed)

	got, err = env.users.GetUser(ctx, 0, bob.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSubscribed)

	users, total, err := env.users.ListUsers(ctx, 0, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 2)
	assert.Equal(t, "ann", users[0].Username)

	_, err = env.users.GetUser(ctx, 0, 404)
	var notFound *service.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSubscriptions(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	reader := testhelpers.CreateUser(t, env.db, "reader")
	first := testhelpers.CreateUser(t, env.db, "zed")
	second := testhelpers.CreateUser(t, env.db, "amy")
	for _, name := range []string{"a", "b", "c"} {
		testhelpers.CreateRecipe(t, env.db, first, name, nil, nil)
	}

	for _, target := range []*models.User{first, second} {
		_, err := env.relations.Follow(ctx, reader.ID, target.ID, 0)
		require.NoError(t, err)
	}

	subs, total, err := env.users.Subscriptions(ctx, reader.ID, firstPage(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, subs, 2)

	assert.Equal(t, first.ID, subs[0].ID)
	assert.True(t, subs[0].IsSubscribed)
	assert.Equal(t, int64(3), subs[0].RecipesCount)
	assert.Len(t, subs[0].Recipes, 2)

	assert.Equal(t, second.ID, subs[1].ID)
	assert.Zero(t, subs[1].RecipesCount)
	assert.Empty(t, subs[1].Recipes)

	subs, _, err = env.users.Subscriptions(ctx, reader.ID, types.Pagination{Page: 2, Limit: 1}, 0)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, second.ID, subs[0].ID)
}

func TestAvatarLifecycle(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, env.db, "ann")

	first, err := env.users.SetAvatar(ctx, user.ID, testhelpers.TestPNG)
	require.NoError(t, err)
	assert.Regexp(t, `^/media/users/avatars/.+\.png$`, first)
	assert.Len(t, env.storedFiles(t), 1)

	second, err := env.users.SetAvatar(ctx, user.ID, testhelpers.TestPNG)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Len(t, env.storedFiles(t), 1)

	got, err := env.users.GetUser(ctx, 0, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Avatar)
	assert.Equal(t, second, *got.Avatar)

	require.NoError(t, env.users.DeleteAvatar(ctx, user.ID))
	assert.Empty(t, env.storedFiles(t))
	got, err = env.users.GetUser(ctx, 0, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Avatar)

	require.NoError(t, env.users.DeleteAvatar(ctx, user.ID))
}

func TestSetAvatarRejectsInvalidImage(t *testing.T) {
	env := setupEnv(t)
	user := testhelpers.CreateUser(t, env.db, "ann")

	_, err := env.users.SetAvatar(context.Background(), user.ID, "!!!")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "avatar")
}

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "recipes/abc.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/abc.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "recipes", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "recipes", "abc.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(context.Background(), url))
}

func TestLocalStoreRejectsForeignURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(context.Background(), "https://elsewhere/x.png"), ErrNotOwned)
}

func TestLocalStoreContainsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../../escape.png", []byte("x"), "image/png")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.png"))
	assert.NoError(t, err)
}

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func TestS3StoreSave(t *testing.T) {
	api := new(mockObjectAPI)
	store := NewS3StoreWithAPI(api, "bucket", "https://bucket.s3.example/")

	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "bucket" && *in.Key == "recipes/1.png" && *in.ContentType == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	url, err := store.Save(context.Background(), "recipes/1.png", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.example/recipes/1.png", url)

	api.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Key == "recipes/1.png"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, store.Delete(context.Background(), url))
	api.AssertExpectations(t)
}

func TestS3StoreBreakerOpensAfterFailures(t *testing.T) {
	api := new(mockObjectAPI)
	store := NewS3StoreWithAPI(api, "bucket", "https://bucket.s3.example")

	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("unavailable")).Times(5)

	for i := 0; i < 5; i++ {
		_, err := store.Save(context.Background(), "k.png", []byte("x"), "image/png")
		require.Error(t, err)
	}

	// breaker is open: the API is not called again
	_, err := store.Save(context.Background(), "k.png", []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	api.AssertNumberOfCalls(t, "PutObject", 5)
}

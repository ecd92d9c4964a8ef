package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const testBaseURL = "http://foodgram.test"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)
	images := service.NewImageService(store)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	links := service.NewShortLinkService(db, nil, time.Hour)

	router := gin.New()
	api.RegisterRoutes(router, api.Deps{
		Auth:       auth,
		Users:      service.NewUserService(db, images),
		Recipes:    service.NewRecipeService(db, images, links),
		Relations:  service.NewRelationService(db),
		Shopping:   service.NewShoppingService(db),
		ShortLinks: links,
		Reference:  service.NewReferenceService(db),
		BaseURL:    testBaseURL,
		PageSize:   6,
	})

	return &testServer{router: router, db: db, auth: auth}
}

// userWithToken creates a user and returns it with a valid auth header value.
func (s *testServer) userWithToken(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateUser(t, s.db, username)
	token, err := s.auth.GenerateToken(user)
	require.NoError(t, err)
	return user, "Bearer " + token
}

func (s *testServer) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

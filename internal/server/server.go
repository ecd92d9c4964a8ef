package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
}

// New wires the services and routes. redisClient may be nil.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.ImageStore) *Server {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.AccessLog(),
		middleware.CORS(cfg.CORSOrigins),
	)
	router.NoRoute(middleware.NotFound())

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	images := service.NewImageService(store)
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL, redisClient)
	shortLinks := service.NewShortLinkService(db, redisClient, cfg.ShortLinkCacheTTL)

	api.RegisterRoutes(router, api.Deps{
		Auth:          auth,
		Users:         service.NewUserService(db, images),
		Recipes:       service.NewRecipeService(db, images, shortLinks),
		Relations:     service.NewRelationService(db),
		Shopping:      service.NewShoppingService(db),
		ShortLinks:    shortLinks,
		Reference:     service.NewReferenceService(db),
		RecipeLimiter: middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit),
		BaseURL:       baseURL,
		PageSize:      cfg.PageSize,
	})

	s := &Server{
		router: router,
		db:     db,
		redis:  redisClient,
	}

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if local, ok := store.(*storage.LocalStore); ok && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(cfg.MediaURL, local.Dir())
	}

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a graceful
// shutdown.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	status := http.StatusOK

	if err := database.HealthCheck(ctx, s.db); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("database health check failed")
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if s.redis != nil {
		checks["redis"] = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("redis health check failed")
			checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

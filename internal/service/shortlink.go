package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

const (
	shortLinkLength      = 10
	shortLinkAlphabet    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxShortLinkAttempts = 8
	shortLinkCachePrefix = "short_link:"
)

// ShortLinkPattern matches a well-formed short-link token.
var ShortLinkPattern = regexp.MustCompile(`^[a-zA-Z0-9]{10}$`)

// ShortLinkService assigns opaque tokens to recipes and resolves them back.
type ShortLinkService struct {
	db    *gorm.DB
	cache *redis.Client
	ttl   time.Duration
}

// NewShortLinkService creates the resolver. cache may be nil.
func NewShortLinkService(db *gorm.DB, cache *redis.Client, ttl time.Duration) *ShortLinkService {
	return &ShortLinkService{db: db, cache: cache, ttl: ttl}
}

// EnsureShortLink returns the recipe's token, assigning one on first use.
func (s *ShortLinkService) EnsureShortLink(ctx context.Context, recipeID uint) (string, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.Select("id", "short_link").First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &NotFoundError{Resource: "recipe", ID: recipeID}
		}
		return "", err
	}
	if recipe.ShortLink != nil {
		return *recipe.ShortLink, nil
	}

	var token string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		token, err = assignShortLink(tx, recipeID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to assign short link: %w", err)
	}
	return token, nil
}

// Resolve maps a token to its recipe id.
func (s *ShortLinkService) Resolve(ctx context.Context, token string) (uint, error) {
	if !ShortLinkPattern.MatchString(token) {
		return 0, &NotFoundError{Resource: "short link"}
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, shortLinkCachePrefix+token).Result()
		switch {
		case err == nil:
			if id, perr := strconv.ParseUint(cached, 10, 64); perr == nil {
				metrics.ShortLinkCacheTotal.WithLabelValues("hit").Inc()
				return uint(id), nil
			}
		case !errors.Is(err, redis.Nil):
			logging.Ctx(ctx).Warn().Err(err).Msg("short link cache lookup failed")
		}
		metrics.ShortLinkCacheTotal.WithLabelValues("miss").Inc()
	}

	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id").Where("short_link = ?", token).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, &NotFoundError{Resource: "short link"}
	}
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, shortLinkCachePrefix+token, recipe.ID, s.ttl).Err(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("short link cache store failed")
		}
	}
	return recipe.ID, nil
}

// Evict drops a cached token so it no longer resolves once its recipe is gone.
func (s *ShortLinkService) Evict(ctx context.Context, token string) {
	if s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Del(ctx, shortLinkCachePrefix+token).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("token", token).Msg("short link cache eviction failed")
	}
}

// assignShortLink sets a fresh token on a recipe that has none and returns
// the recipe's token. Must run inside a transaction: each attempt is wrapped
// in a savepoint so a collision does not abort the enclosing transaction.
func assignShortLink(tx *gorm.DB, recipeID uint) (string, error) {
	for attempt := 0; attempt < maxShortLinkAttempts; attempt++ {
		token, err := generateShortLink()
		if err != nil {
			return "", err
		}

		savepoint := fmt.Sprintf("short_link_%d", attempt)
		if err := tx.SavePoint(savepoint).Error; err != nil {
			return "", err
		}

		res := tx.Model(&models.Recipe{}).
			Where("id = ? AND short_link IS NULL", recipeID).
			Update("short_link", token)
		if database.IsUniqueViolation(res.Error) {
			if err := tx.RollbackTo(savepoint).Error; err != nil {
				return "", err
			}
			continue
		}
		if res.Error != nil {
			return "", res.Error
		}

		if res.RowsAffected == 0 {
			// assigned concurrently
			var recipe models.Recipe
			if err := tx.Select("id", "short_link").First(&recipe, recipeID).Error; err != nil {
				return "", err
			}
			if recipe.ShortLink == nil {
				return "", fmt.Errorf("recipe %d has no short link after assignment", recipeID)
			}
			return *recipe.ShortLink, nil
		}
		return token, nil
	}
	return "", fmt.Errorf("could not generate a unique short link after %d attempts", maxShortLinkAttempts)
}

func generateShortLink() (string, error) {
	alphabetSize := big.NewInt(int64(len(shortLinkAlphabet)))
	buf := make([]byte, shortLinkLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = shortLinkAlphabet[n.Int64()]
	}
	return string(buf), nil
}

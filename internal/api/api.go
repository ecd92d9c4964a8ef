// Package api exposes the services over HTTP with gin.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Deps holds everything the handlers need.
type Deps struct {
	Auth       service.IAuthService
	Users      service.IUserService
	Recipes    service.IRecipeService
	Relations  service.IRelationService
	Shopping   service.IShoppingService
	ShortLinks service.IShortLinkService
	Reference  service.IReferenceService

	// RecipeLimiter throttles recipe creation; nil disables it.
	RecipeLimiter *middleware.RateLimiter

	// BaseURL is the public origin used in redirects, short links and
	// pagination links, without a trailing slash.
	BaseURL  string
	PageSize int
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Deps) {
	RegisterValidators()

	requireAuth := middleware.RequireAuth(deps.Auth)
	optionalAuth := middleware.OptionalAuth(deps.Auth)
	pages := paginator{baseURL: deps.BaseURL, defaultLimit: deps.PageSize}

	api := router.Group("/api")

	NewAuthHandler(deps.Auth).RegisterRoutes(api, requireAuth)
	NewUserHandler(deps.Auth, deps.Users, deps.Relations, pages).RegisterRoutes(api, requireAuth, optionalAuth)
	NewReferenceHandler(deps.Reference).RegisterRoutes(api)

	recipeHandler := NewRecipeHandler(deps.Recipes, deps.Relations, deps.Shopping, deps.ShortLinks, pages, deps.BaseURL)
	recipeHandler.RegisterRoutes(api, requireAuth, optionalAuth, deps.RecipeLimiter)

	NewShortLinkHandler(deps.ShortLinks, deps.BaseURL).RegisterRoutes(router)
}

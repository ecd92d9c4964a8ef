package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
)

// ShortLinkHandler redirects short links to the recipe page.
type ShortLinkHandler struct {
	shortLinks service.IShortLinkService
	baseURL    string
}

func NewShortLinkHandler(shortLinks service.IShortLinkService, baseURL string) *ShortLinkHandler {
	return &ShortLinkHandler{shortLinks: shortLinks, baseURL: baseURL}
}

// RegisterRoutes mounts the resolver at the site root.
func (h *ShortLinkHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/:token/", h.Redirect)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	recipeID, err := h.shortLinks.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/recipes/%d/", h.baseURL, recipeID))
}

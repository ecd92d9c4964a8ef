package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

type paginator struct {
	baseURL      string
	defaultLimit int
}

// parse reads page and limit from the query string. It writes a 400 and
// returns false on malformed values.
func (p paginator) parse(c *gin.Context) (types.Pagination, bool) {
	page := types.Pagination{Page: 1, Limit: p.defaultLimit}
	if page.Limit < 1 {
		page.Limit = 6
	}

	fields := map[string]string{}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fields["page"] = "invalid page"
		}
		page.Page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fields["limit"] = "invalid limit"
		}
		page.Limit = min(n, maxPageSize)
	}

	if len(fields) > 0 {
		validationFailed(c, fields)
		return page, false
	}
	return page, true
}

// respondPage writes one page of results. A page past the last one is a 404;
// an empty first page is not.
func respondPage[T any](p paginator, c *gin.Context, results []T, total int64, page types.Pagination) {
	if page.Page > 1 && int64(page.Offset()) >= total {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid page"})
		return
	}
	c.JSON(http.StatusOK, newPage(p, c, results, total, page))
}

// newPage wraps results with the total count and links to the neighbouring pages.
func newPage[T any](p paginator, c *gin.Context, results []T, total int64, page types.Pagination) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: total, Results: results}

	if int64(page.Offset()+len(results)) < total {
		next := p.link(c, page.Page+1)
		out.Next = &next
	}
	if page.Page > 1 {
		prev := p.link(c, page.Page-1)
		out.Previous = &prev
	}
	return out
}

func (p paginator) link(c *gin.Context, pageNum int) string {
	q := c.Request.URL.Query()
	if pageNum <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(pageNum))
	}

	u := p.baseURL + c.Request.URL.Path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

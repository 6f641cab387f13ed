package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is one page of list results.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination is the offset window of a Page.
type Pagination struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// pageParams reads offset and limit, clamping limit to 1..maxPageSize.
func pageParams(c *fiber.Ctx) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit = c.QueryInt("limit", defaultPageSize)
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	return offset, limit
}

// respondPage writes items with RFC 8288 Link headers.
func respondPage[T any](c *fiber.Ctx, items []T, offset, limit, total int) error {
	if items == nil {
		items = []T{}
	}
	p := Pagination{Offset: offset, Limit: limit, Total: total, HasMore: offset+len(items) < total}
	setLinkHeaders(c, p)
	return c.JSON(Page[T]{Data: items, Pagination: p})
}

// setLinkHeaders carries the current query filters into every link.
func setLinkHeaders(c *fiber.Ctx, p Pagination) {
	href := func(offset int) string {
		args := fasthttp.AcquireArgs()
		defer fasthttp.ReleaseArgs(args)
		c.Context().QueryArgs().CopyTo(args)
		args.Set("offset", strconv.Itoa(offset))
		args.Set("limit", strconv.Itoa(p.Limit))
		return c.Path() + "?" + args.String()
	}

	links := []string{fmt.Sprintf(`<%s>; rel="first"`, href(0))}
	if p.Offset > 0 {
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, href(max(p.Offset-p.Limit, 0))))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, href(p.Offset+p.Limit)))
	}
	last := 0
	if p.Total > 0 {
		last = (p.Total - 1) / p.Limit * p.Limit
	}
	links = append(links, fmt.Sprintf(`<%s>; rel="last"`, href(last)))

	c.Set(fiber.HeaderLink, strings.Join(links, ", "))
}

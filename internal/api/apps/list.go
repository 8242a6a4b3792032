package apps

import (
	"appforge/internal/api/web"
	"appforge/internal/domain"

	"go.uber.org/zap"
)

// PerPage 列表每页条数
const PerPage = 24

// ListResponse 列表接口的响应
type ListResponse struct {
	Apps            []domain.App `json:"apps"`
	Recommendations []domain.App `json:"recommendations"`
	Category        string       `json:"category,omitempty"`
	CategoryName    string       `json:"categoryName,omitempty"`
	Query           string       `json:"query,omitempty"`
	Page            int          `json:"page"`
	PerPage         int          `json:"perPage"`
	Total           int          `json:"total"`
	TotalPages      int          `json:"totalPages"`
}

// List GET /api/apps
//
// 有 q 走搜索，有 category 走分类列表，都没有时返回精选列表；
// limit 限制分页前拉取的条数。
func (h *handler) List(c web.Context) error {
	ctx := c.Request().Context()

	page, ok := c.QueryInt("page", 1)
	if !ok {
		return c.BadRequest("page must be a positive integer")
	}
	limit, ok := c.QueryInt("limit", 0)
	if !ok {
		return c.BadRequest("limit must be a positive integer")
	}

	resp := ListResponse{
		Recommendations: []domain.App{},
		Page:            page,
		PerPage:         PerPage,
	}

	var all []domain.App
	switch q, category := c.QueryParam("q"), c.QueryParam("category"); {
	case q != "":
		res := h.catalog.SearchApps(ctx, q)
		all, resp.Recommendations, resp.Query = res.Apps, res.Recommendations, q
	case category != "":
		all = h.catalog.GetAppsByCategory(ctx, category, limit)
		resp.Category, resp.CategoryName = category, domain.DisplayName(category)
	default:
		all = h.catalog.GetApps(ctx, limit)
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	resp.Apps, resp.Total, resp.TotalPages = paginate(all, page, PerPage)

	c.L.Debug("listed apps",
		zap.Int("total", resp.Total),
		zap.Int("page", page),
	)
	return c.OK(resp)
}

// paginate 返回第 page 页 (从 1 开始)、总条数和总页数
func paginate(items []domain.App, page, perPage int) ([]domain.App, int, int) {
	total := len(items)
	pages := (total + perPage - 1) / perPage

	// 先和总页数比较，避免超大页码相乘溢出
	if page > pages {
		return []domain.App{}, total, pages
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return items[start:end], total, pages
}

// Featured GET /api/apps/featured
func (h *handler) Featured(c web.Context) error {
	return c.OK(h.catalog.GetFeaturedApps(c.Request().Context()))
}

// TrendingResponse 热门接口的响应
type TrendingResponse struct {
	Popular         []domain.App `json:"popular"`
	RecentlyUpdated []domain.App `json:"recentlyUpdated"`
}

// Trending GET /api/apps/trending
func (h *handler) Trending(c web.Context) error {
	ctx := c.Request().Context()

	limit, ok := c.QueryInt("limit", 8)
	if !ok {
		return c.BadRequest("limit must be a positive integer")
	}
	days, ok := c.QueryInt("days", 30)
	if !ok {
		return c.BadRequest("days must be a positive integer")
	}

	return c.OK(TrendingResponse{
		Popular:         h.catalog.GetTrending(ctx, limit),
		RecentlyUpdated: h.catalog.GetRecentlyUpdated(ctx, days, limit),
	})
}

// Categories GET /api/categories
func (h *handler) Categories(c web.Context) error {
	return c.OK(h.catalog.Categories())
}

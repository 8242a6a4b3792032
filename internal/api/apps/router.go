package apps

import (
	"context"

	"appforge/internal/api/web"
	"appforge/internal/domain"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Catalog 处理函数依赖的目录服务读接口
type Catalog interface {
	GetApps(ctx context.Context, limit int) []domain.App
	GetFeaturedApps(ctx context.Context) []domain.App
	GetAppsByCategory(ctx context.Context, category string, limit int) []domain.App
	SearchApps(ctx context.Context, query string) domain.SearchResult
	GetAppDetail(ctx context.Context, owner, name string) *domain.AppDetail
	GetTrending(ctx context.Context, limit int) []domain.App
	GetRecentlyUpdated(ctx context.Context, maxDays, limit int) []domain.App
	Categories() []domain.CategoryInfo
}

type handler struct {
	catalog Catalog
}

func Configure(e *echo.Echo, l *zap.Logger, catalog Catalog) {
	h := &handler{catalog: catalog}

	e.GET("/api/apps", web.Wrap(h.List, l))
	e.GET("/api/apps/featured", web.Wrap(h.Featured, l))
	e.GET("/api/apps/trending", web.Wrap(h.Trending, l))
	e.GET("/api/apps/:owner/:repo", web.Wrap(h.Get, l))
	e.GET("/api/categories", web.Wrap(h.Categories, l))
}

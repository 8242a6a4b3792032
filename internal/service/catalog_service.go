package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"appforge/internal/catalog"
	"appforge/internal/curated"
	"appforge/internal/domain"
	"appforge/internal/metrics"
	"appforge/internal/port"

	"github.com/google/go-github/v53/github"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	featuredLimit         = 3
	categoryDefaultLimit  = 100
	categoryFallbackLimit = 100
	searchFallbackLimit   = curated.DefaultLimit
	searchPerPage         = 100
	recommendationPerPage = 10
	maxRecommendations    = 4
	releaseLimit          = 10
)

// 降级流程名，用作指标标签
const (
	flowCategory = "category"
	flowSearch   = "search"
)

var errPanic = errors.New("panic in catalog flow")

// appMapper 仓库 → App 的映射，由 *catalog.Mapper 实现
type appMapper interface {
	Map(repo *github.Repository, override string) domain.App
}

// CatalogService 编排网关和映射器，提供目录的各种查询。
// 不持有跨请求状态，所有上游失败都降级为较少或为空的结果。
type CatalogService struct {
	gateway     port.Gateway
	mapper      appMapper
	details     *catalog.DetailBuilder
	curated     *curated.List
	keywords    Keywords
	log         *zap.Logger
	rec         metrics.Recorder
	concurrency int
	nowFunc     func() time.Time
}

// Option 配置 CatalogService
type Option func(*CatalogService)

// WithMapper 替换映射器
func WithMapper(m *catalog.Mapper) Option {
	return func(s *CatalogService) {
		if m != nil {
			s.mapper = m
			s.details = catalog.NewDetailBuilder(m)
		}
	}
}

// WithCurated 替换精选种子列表
func WithCurated(l *curated.List) Option {
	return func(s *CatalogService) {
		if l != nil {
			s.curated = l
		}
	}
}

// WithKeywords 替换分类关键词表
func WithKeywords(k Keywords) Option {
	return func(s *CatalogService) {
		if k != nil {
			s.keywords = k
		}
	}
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(s *CatalogService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder 设置指标记录器
func WithRecorder(r metrics.Recorder) Option {
	return func(s *CatalogService) {
		if r != nil {
			s.rec = r
		}
	}
}

// WithConcurrency 设置精选列表并发拉取的 worker 数
func WithConcurrency(n int) Option {
	return func(s *CatalogService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewCatalogService 创建目录服务
func NewCatalogService(gateway port.Gateway, opts ...Option) *CatalogService {
	m := catalog.NewMapper()
	s := &CatalogService{
		gateway:     gateway,
		mapper:      m,
		details:     catalog.NewDetailBuilder(m),
		curated:     curated.Default(),
		keywords:    DefaultKeywords(),
		log:         zap.NewNop(),
		rec:         metrics.NoopRecorder{},
		concurrency: DefaultConcurrency,
		nowFunc:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("catalog")
	return s
}

// GetApps 返回精选种子列表中前 limit 个应用 (limit <= 0 时取 50)。
// 拉取失败的条目被丢弃，部分结果也是成功。
func (s *CatalogService) GetApps(ctx context.Context, limit int) []domain.App {
	if limit <= 0 {
		limit = curated.DefaultLimit
	}
	return s.fetchCurated(ctx, s.curated.Configs(limit, false))
}

// GetFeaturedApps 返回精选标记的前 3 个应用
func (s *CatalogService) GetFeaturedApps(ctx context.Context) []domain.App {
	return s.fetchCurated(ctx, s.curated.Configs(featuredLimit, true))
}

func (s *CatalogService) fetchCurated(ctx context.Context, entries []curated.Entry) []domain.App {
	return runPool(ctx, s.concurrency, entries, func(ctx context.Context, e curated.Entry) (domain.App, bool) {
		repo, err := s.gateway.GetRepository(ctx, e.Owner(), e.Name())
		if err != nil || repo == nil {
			s.log.Warn("skipping curated app",
				zap.String("repo", e.Repo),
				zap.Error(err),
			)
			return domain.App{}, false
		}
		return s.mapOne(repo, e.Category)
	})
}

// GetAppsByCategory 按分类关键词搜索 GitHub，强制使用请求的分类 (limit <= 0 时取 100)。
// 未知分类或流程中任何错误都降级为按分类过滤的精选列表。
func (s *CatalogService) GetAppsByCategory(ctx context.Context, category string, limit int) []domain.App {
	if limit <= 0 {
		limit = categoryDefaultLimit
	}

	c, ok := domain.ParseCategory(category)
	var keyword string
	if ok {
		keyword, ok = s.keywords.Primary(c)
	}
	if !ok {
		return s.curatedByCategory(ctx, category)
	}

	apps, err := guard(func() ([]domain.App, error) {
		return s.searchCategory(ctx, c, keyword, limit)
	})
	if err != nil {
		s.log.Warn("category search failed, using curated list",
			zap.String("category", string(c)),
			zap.Error(err),
		)
		s.rec.IncFallback(flowCategory)
		return s.curatedByCategory(ctx, category)
	}
	return apps
}

func (s *CatalogService) searchCategory(ctx context.Context, c domain.Category, keyword string, limit int) ([]domain.App, error) {
	query := fmt.Sprintf("topic:%s archived:false", keyword)
	perPage := min(limit, searchPerPage)
	pages := (limit + searchPerPage - 1) / searchPerPage

	s.log.Debug("searching category",
		zap.String("category", string(c)),
		zap.String("q", query),
		zap.Int("pages", pages),
	)

	var items []*github.Repository
	for page := 1; page <= pages && len(items) < limit; page++ {
		res, err := s.gateway.SearchRepositories(ctx, query, port.SearchOptions{
			Sort:    "stars",
			Order:   "desc",
			Page:    page,
			PerPage: perPage,
		})
		if err != nil {
			return nil, err
		}
		if res == nil {
			break
		}
		items = append(items, res.Items...)
		if len(res.Items) < perPage {
			break
		}
	}
	if len(items) > limit {
		items = items[:limit]
	}

	return s.mapMany(items, string(c)), nil
}

func (s *CatalogService) curatedByCategory(ctx context.Context, category string) []domain.App {
	all := s.GetApps(ctx, categoryFallbackLimit)
	apps := make([]domain.App, 0, len(all))
	for _, app := range all {
		if strings.EqualFold(string(app.Category), category) {
			apps = append(apps, app)
		}
	}
	return apps
}

// SearchApps 全文搜索并基于第一个结果给出推荐。
// 空查询返回精选列表；任何错误降级为精选列表上的子串过滤，且没有推荐。
func (s *CatalogService) SearchApps(ctx context.Context, query string) domain.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResult{
			Apps:            s.GetApps(ctx, curated.DefaultLimit),
			Recommendations: []domain.App{},
		}
	}

	res, err := guard(func() (domain.SearchResult, error) {
		return s.search(ctx, query)
	})
	if err != nil {
		s.log.Warn("search failed, filtering curated list",
			zap.String("query", query),
			zap.Error(err),
		)
		s.rec.IncFallback(flowSearch)
		return domain.SearchResult{
			Apps:            s.filterCurated(ctx, query),
			Recommendations: []domain.App{},
		}
	}
	return res
}

func (s *CatalogService) search(ctx context.Context, query string) (domain.SearchResult, error) {
	primary, err := s.gateway.SearchRepositories(ctx,
		fmt.Sprintf("%s in:name,description,readme archived:false", query),
		port.SearchOptions{Sort: "stars", Order: "desc", PerPage: searchPerPage},
	)
	if err != nil {
		return domain.SearchResult{}, err
	}
	if primary == nil {
		primary = &port.RepoSearchResult{}
	}

	result := domain.SearchResult{
		Apps:            s.mapMany(primary.Items, ""),
		Recommendations: []domain.App{},
	}
	if len(primary.Items) == 0 {
		return result, nil
	}

	recQuery := recommendationQuery(primary.Items[0])
	if recQuery == "" {
		return result, nil
	}

	recs, err := s.gateway.SearchRepositories(ctx, recQuery, port.SearchOptions{
		Sort:    "stars",
		Order:   "desc",
		PerPage: recommendationPerPage,
	})
	if err != nil {
		return domain.SearchResult{}, err
	}
	if recs == nil {
		recs = &port.RepoSearchResult{}
	}

	seen := make(map[int64]bool, len(primary.Items))
	for _, r := range primary.Items {
		seen[r.GetID()] = true
	}
	unique := make([]*github.Repository, 0, len(recs.Items))
	for _, r := range recs.Items {
		if r != nil && !seen[r.GetID()] {
			unique = append(unique, r)
		}
	}
	if len(unique) > maxRecommendations {
		unique = unique[:maxRecommendations]
	}
	result.Recommendations = s.mapMany(unique, "")
	return result, nil
}

// recommendationQuery 优先使用第一个 topic，没有时使用主语言
func recommendationQuery(top *github.Repository) string {
	if top == nil {
		return ""
	}
	if len(top.Topics) > 0 {
		return fmt.Sprintf("topic:%s archived:false", top.Topics[0])
	}
	if lang := top.GetLanguage(); lang != "" {
		return fmt.Sprintf("language:%s archived:false", lang)
	}
	return ""
}

func (s *CatalogService) filterCurated(ctx context.Context, query string) []domain.App {
	q := strings.ToLower(query)
	all := s.GetApps(ctx, searchFallbackLimit)
	apps := make([]domain.App, 0, len(all))
	for _, app := range all {
		if strings.Contains(strings.ToLower(app.Name), q) ||
			strings.Contains(strings.ToLower(app.ShortDescription), q) {
			apps = append(apps, app)
		}
	}
	return apps
}

// GetAppDetail 返回单个应用的详情，仓库不存在时返回 nil
func (s *CatalogService) GetAppDetail(ctx context.Context, owner, name string) *domain.AppDetail {
	repo, err := s.gateway.GetRepository(ctx, owner, name)
	if err != nil || repo == nil {
		return nil
	}

	var (
		readme   string
		releases []*github.RepositoryRelease
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		readme, err = s.gateway.GetReadme(gctx, owner, name)
		return err
	})
	g.Go(func() error {
		var err error
		releases, err = s.gateway.GetReleases(gctx, owner, name, releaseLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Debug("app detail abandoned", zap.String("repo", owner+"/"+name), zap.Error(err))
		return nil
	}

	detail, err := guard(func() (*domain.AppDetail, error) {
		return s.details.Build(repo, readme, releases), nil
	})
	if err != nil {
		s.log.Warn("building app detail failed", zap.String("repo", repo.GetFullName()), zap.Error(err))
		return nil
	}

	if c, ok := s.curatedCategory(repo.GetFullName()); ok {
		detail.Category = c
	}
	return detail
}

func (s *CatalogService) curatedCategory(fullName string) (domain.Category, bool) {
	for _, e := range s.curated.Configs(0, false) {
		if strings.EqualFold(e.Repo, fullName) {
			c := domain.Category(e.Category)
			return c, c.Valid()
		}
	}
	return "", false
}

// GetTrending 精选列表按 star 数降序排列
func (s *CatalogService) GetTrending(ctx context.Context, limit int) []domain.App {
	apps := s.GetApps(ctx, 0)
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].Stats.Stars > apps[j].Stats.Stars
	})
	if limit > 0 && len(apps) > limit {
		apps = apps[:limit]
	}
	return apps
}

// GetRecentlyUpdated 最近 maxDays 天内有更新的精选应用，按更新时间降序
func (s *CatalogService) GetRecentlyUpdated(ctx context.Context, maxDays, limit int) []domain.App {
	apps := FilterByUpdatedWithin(s.GetApps(ctx, 0), maxDays, s.nowFunc())
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].LastUpdated.After(apps[j].LastUpdated)
	})
	if limit > 0 && len(apps) > limit {
		apps = apps[:limit]
	}
	return apps
}

// FilterByUpdatedWithin 保留 now 之前 maxDays 天内更新过的应用
func FilterByUpdatedWithin(apps []domain.App, maxDays int, now time.Time) []domain.App {
	maxAge := time.Duration(maxDays) * 24 * time.Hour
	filtered := make([]domain.App, 0, len(apps))
	for _, app := range apps {
		if now.Sub(app.LastUpdated) <= maxAge {
			filtered = append(filtered, app)
		}
	}
	return filtered
}

// Categories 返回分类展示表，AppCount 为精选列表中显式标注该分类的数量
func (s *CatalogService) Categories() []domain.CategoryInfo {
	counts := s.curated.CountByCategory()
	infos := make([]domain.CategoryInfo, len(domain.Categories))
	for i, info := range domain.Categories {
		info.AppCount = counts[info.ID]
		infos[i] = info
	}
	return infos
}

// RateLimit 透传网关的速率限制查询
func (s *CatalogService) RateLimit(ctx context.Context) (*domain.RateLimit, error) {
	return s.gateway.RateLimit(ctx)
}

// mapOne 映射单个仓库，panic 时丢弃该条目
func (s *CatalogService) mapOne(repo *github.Repository, override string) (app domain.App, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("mapping repository panicked",
				zap.String("repo", repo.GetFullName()),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			app, ok = domain.App{}, false
		}
	}()
	return s.mapper.Map(repo, override), true
}

func (s *CatalogService) mapMany(repos []*github.Repository, override string) []domain.App {
	apps := make([]domain.App, 0, len(repos))
	for _, repo := range repos {
		if repo == nil {
			continue
		}
		if app, ok := s.mapOne(repo, override); ok {
			apps = append(apps, app)
		}
	}
	return apps
}

// guard 把流程中的 panic 转换为错误
func guard[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return fn()
}

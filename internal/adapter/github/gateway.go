package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"appforge/internal/cache"
	"appforge/internal/common"
	"appforge/internal/domain"
	"appforge/internal/metrics"
	"appforge/internal/port"

	"github.com/google/go-github/v53/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// 网关操作名，用作日志字段、缓存 key 前缀和指标标签
const (
	opRepository = "get_repository"
	opReadme     = "get_readme"
	opReleases   = "get_releases"
	opSearch     = "search_repositories"
	opRateLimit  = "rate_limit"
)

const defaultReleaseLimit = 10

// Config 网关配置
type Config struct {
	Token     string        // GitHub Personal Access Token，为空则匿名访问 (60 次/小时)
	BaseURL   string        // 默认 https://api.github.com/
	Timeout   time.Duration // 单次 HTTP 调用超时
	Retries   int           // 默认 0，只调用一次
	CacheSize int           // 每类操作的缓存条目上限
	RepoTTL   time.Duration // 仓库 / README / release 缓存时间，默认 1 小时
	SearchTTL time.Duration // 搜索缓存时间，默认 30 分钟
	Clock     cache.Clock

	// 退避参数，零值使用 common.DefaultPolicy 的取值
	RetryDelay      time.Duration
	RetryMaxDelay   time.Duration
	RetryMultiplier float64
}

// Gateway 实现了 port.Gateway 接口
type Gateway struct {
	client    *github.Client
	log       *zap.Logger
	rec       metrics.Recorder
	retryOpts []common.Option

	repos    *cache.TTL[*github.Repository]
	readmes  *cache.TTL[string]
	releases *cache.TTL[[]*github.RepositoryRelease]
	searches *cache.TTL[*port.RepoSearchResult]
}

var _ port.Gateway = (*Gateway)(nil)

// NewGateway 初始化 GitHub 客户端和各操作的响应缓存
func NewGateway(cfg Config, log *zap.Logger, rec metrics.Recorder) (*Gateway, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 512
	}
	if cfg.RepoTTL <= 0 {
		cfg.RepoTTL = time.Hour
	}
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = 30 * time.Minute
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	var cacheOpts []cache.Option
	if cfg.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(cfg.Clock))
	}

	g := &Gateway{
		client: client,
		log:    log.Named("github"),
		rec:    rec,
		retryOpts: []common.Option{
			common.WithMaxRetries(cfg.Retries),
			common.WithInitialDelay(cfg.RetryDelay),
			common.WithMaxDelay(cfg.RetryMaxDelay),
			common.WithMultiplier(cfg.RetryMultiplier),
			common.WithRetryIf(isRetryable),
		},
	}
	if g.repos, err = cache.New[*github.Repository](cfg.CacheSize, cfg.RepoTTL, cacheOpts...); err != nil {
		return nil, common.WrapError(common.ErrCodeCache, "create repository cache", err)
	}
	if g.readmes, err = cache.New[string](cfg.CacheSize, cfg.RepoTTL, cacheOpts...); err != nil {
		return nil, common.WrapError(common.ErrCodeCache, "create readme cache", err)
	}
	if g.releases, err = cache.New[[]*github.RepositoryRelease](cfg.CacheSize, cfg.RepoTTL, cacheOpts...); err != nil {
		return nil, common.WrapError(common.ErrCodeCache, "create release cache", err)
	}
	if g.searches, err = cache.New[*port.RepoSearchResult](cfg.CacheSize, cfg.SearchTTL, cacheOpts...); err != nil {
		return nil, common.WrapError(common.ErrCodeCache, "create search cache", err)
	}
	return g, nil
}

func newClient(cfg Config) (*github.Client, error) {
	var httpClient *http.Client
	if cfg.Token == "" {
		httpClient = &http.Client{}
	} else {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.Token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	client := github.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, common.WrapError(common.ErrCodeConfig, "invalid GitHub base URL", err)
		}
		client.BaseURL = u
	}
	return client, nil
}

// GetRepository 获取单个仓库，缓存 RepoTTL
func (g *Gateway) GetRepository(ctx context.Context, owner, name string) (*github.Repository, error) {
	key := cache.Key(opRepository, strings.ToLower(owner), strings.ToLower(name))
	if repo, ok := g.repos.Get(key); ok {
		g.rec.IncCache(opRepository, true)
		return repo, nil
	}
	g.rec.IncCache(opRepository, false)

	var repo *github.Repository
	err := g.call(ctx, opRepository, func(ctx context.Context) (*github.Response, error) {
		r, resp, err := g.client.Repositories.Get(ctx, owner, name)
		repo = r
		return resp, err
	})
	if err != nil {
		return nil, g.absorb(ctx, opRepository, err, zap.String("owner", owner), zap.String("repo", name))
	}

	g.repos.Set(key, repo)
	return repo, nil
}

// GetReadme 获取 README 并解码 base64 内容
func (g *Gateway) GetReadme(ctx context.Context, owner, name string) (string, error) {
	key := cache.Key(opReadme, strings.ToLower(owner), strings.ToLower(name))
	if text, ok := g.readmes.Get(key); ok {
		g.rec.IncCache(opReadme, true)
		return text, nil
	}
	g.rec.IncCache(opReadme, false)

	var content *github.RepositoryContent
	err := g.call(ctx, opReadme, func(ctx context.Context) (*github.Response, error) {
		c, resp, err := g.client.Repositories.GetReadme(ctx, owner, name, nil)
		content = c
		return resp, err
	})
	if err != nil {
		return "", g.absorb(ctx, opReadme, err, zap.String("owner", owner), zap.String("repo", name))
	}

	text, err := decodeReadme(content)
	if err != nil {
		return "", g.absorb(ctx, opReadme, err, zap.String("owner", owner), zap.String("repo", name))
	}

	g.readmes.Set(key, text)
	return text, nil
}

// decodeReadme base64 编码时解码，其它编码原样返回
func decodeReadme(content *github.RepositoryContent) (string, error) {
	if content == nil {
		return "", nil
	}
	if content.GetEncoding() != "base64" {
		if content.Content == nil {
			return "", nil
		}
		return *content.Content, nil
	}
	text, err := content.GetContent()
	if err != nil {
		return "", common.WrapError(common.ErrCodeDecode, "decode README", err)
	}
	return text, nil
}

// GetReleases 获取最近的 release 列表 (limit <= 0 时取 10 个)
func (g *Gateway) GetReleases(ctx context.Context, owner, name string, limit int) ([]*github.RepositoryRelease, error) {
	if limit <= 0 {
		limit = defaultReleaseLimit
	}
	if limit > maxPerPage {
		limit = maxPerPage
	}

	key := cache.Key(opReleases, strings.ToLower(owner), strings.ToLower(name), limit)
	if releases, ok := g.releases.Get(key); ok {
		g.rec.IncCache(opReleases, true)
		return releases, nil
	}
	g.rec.IncCache(opReleases, false)

	var releases []*github.RepositoryRelease
	err := g.call(ctx, opReleases, func(ctx context.Context) (*github.Response, error) {
		r, resp, err := g.client.Repositories.ListReleases(ctx, owner, name, &github.ListOptions{PerPage: limit})
		releases = r
		return resp, err
	})
	if err != nil {
		return []*github.RepositoryRelease{}, g.absorb(ctx, opReleases, err, zap.String("owner", owner), zap.String("repo", name))
	}
	if releases == nil {
		releases = []*github.RepositoryRelease{}
	}

	g.releases.Set(key, releases)
	return releases, nil
}

// SearchRepositories 搜索仓库，缓存 SearchTTL
func (g *Gateway) SearchRepositories(ctx context.Context, query string, opts port.SearchOptions) (*port.RepoSearchResult, error) {
	opts = normalizeOptions(opts)
	q := BuildQuery(query, opts)

	key := cache.Key(opSearch, q, opts.Sort, opts.Order, opts.Page, opts.PerPage)
	if res, ok := g.searches.Get(key); ok {
		g.rec.IncCache(opSearch, true)
		return res, nil
	}
	g.rec.IncCache(opSearch, false)

	g.log.Debug("searching repositories",
		zap.String("q", q),
		zap.Int("page", opts.Page),
		zap.Int("per_page", opts.PerPage),
	)

	var raw *github.RepositoriesSearchResult
	err := g.call(ctx, opSearch, func(ctx context.Context) (*github.Response, error) {
		r, resp, err := g.client.Search.Repositories(ctx, q, &github.SearchOptions{
			Sort:  opts.Sort,
			Order: opts.Order,
			ListOptions: github.ListOptions{
				Page:    opts.Page,
				PerPage: opts.PerPage,
			},
		})
		raw = r
		return resp, err
	})
	if err != nil {
		return &port.RepoSearchResult{}, g.absorb(ctx, opSearch, err, zap.String("q", q))
	}

	res := &port.RepoSearchResult{
		Total: raw.GetTotal(),
		Items: raw.Repositories,
	}
	g.log.Debug("search completed",
		zap.String("q", q),
		zap.Int("total", res.Total),
		zap.Int("items", len(res.Items)),
	)

	g.searches.Set(key, res)
	return res, nil
}

// GetReposByTopic 按 topic 发现项目，默认至少 100 star
func (g *Gateway) GetReposByTopic(ctx context.Context, topic string, minStars, perPage int) ([]*github.Repository, error) {
	if minStars <= 0 {
		minStars = 100
	}
	res, err := g.SearchRepositories(ctx, "", port.SearchOptions{
		Topics:   []string{topic},
		MinStars: minStars,
		PerPage:  perPage,
		Sort:     "stars",
	})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// GetMultipleRepositories 并发获取 "owner/name" 列表中的仓库，丢弃失败项，保持输入顺序
func (g *Gateway) GetMultipleRepositories(ctx context.Context, fullNames []string) ([]*github.Repository, error) {
	results := make([]*github.Repository, len(fullNames))

	var wg sync.WaitGroup
	for i, fullName := range fullNames {
		owner, name, ok := strings.Cut(fullName, "/")
		if !ok {
			g.log.Warn("skipping malformed repository name", zap.String("repo", fullName))
			continue
		}
		wg.Add(1)
		go func(i int, owner, name string) {
			defer wg.Done()
			repo, _ := g.GetRepository(ctx, owner, name)
			results[i] = repo
		}(i, owner, name)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repos := make([]*github.Repository, 0, len(results))
	for _, repo := range results {
		if repo != nil {
			repos = append(repos, repo)
		}
	}
	return repos, nil
}

// RateLimit 查询 core 速率限制，不缓存
func (g *Gateway) RateLimit(ctx context.Context) (*domain.RateLimit, error) {
	var limits *github.RateLimits
	err := g.call(ctx, opRateLimit, func(ctx context.Context) (*github.Response, error) {
		l, resp, err := g.client.RateLimits(ctx)
		limits = l
		return resp, err
	})
	if err != nil {
		return nil, g.absorb(ctx, opRateLimit, err)
	}

	core := limits.GetCore()
	if core == nil {
		return nil, nil
	}
	return &domain.RateLimit{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}

// call 执行一次上游调用 (按重试策略) 并记录耗时和结果
func (g *Gateway) call(ctx context.Context, op string, fn func(ctx context.Context) (*github.Response, error)) error {
	start := time.Now()
	err := common.Do(ctx, func(ctx context.Context) error {
		resp, err := fn(ctx)
		return classify(op, resp, err)
	}, g.retryOpts...)
	g.rec.ObserveUpstream(op, resultOf(ctx, err), time.Since(start))
	return err
}

// absorb 记录并吞掉上游错误；只有 ctx 结束时把错误交还给调用方
func (g *Gateway) absorb(ctx context.Context, op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	if ctxErr := ctx.Err(); ctxErr != nil {
		g.log.Debug("github request abandoned", fields...)
		return ctxErr
	}
	if common.HasCode(err, common.ErrCodeNotFound) {
		g.log.Info("github resource not found", fields...)
		return nil
	}
	g.log.Warn("github request failed", fields...)
	return nil
}

// classify 把 go-github 的错误转换成带错误码的 AppError
func classify(op string, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return common.WrapError(common.ErrCodeNotFound, op, err)
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	return common.WrapError(common.ErrCodeGitHubAPI, fmt.Sprintf("%s (status %d)", op, status), err)
}

// isRetryable 404 和 ctx 结束不重试
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !common.HasCode(err, common.ErrCodeNotFound)
}

func resultOf(ctx context.Context, err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultOK
	case ctx.Err() != nil:
		return metrics.ResultCancelled
	case common.HasCode(err, common.ErrCodeNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}

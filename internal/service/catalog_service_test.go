package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"appforge/internal/catalog"
	"appforge/internal/curated"
	"appforge/internal/domain"
	"appforge/internal/port"

	"github.com/google/go-github/v53/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGateway 模拟 port.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetRepository(ctx context.Context, owner, name string) (*github.Repository, error) {
	args := m.Called(ctx, owner, name)
	repo, _ := args.Get(0).(*github.Repository)
	return repo, args.Error(1)
}

func (m *MockGateway) GetReadme(ctx context.Context, owner, name string) (string, error) {
	args := m.Called(ctx, owner, name)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) GetReleases(ctx context.Context, owner, name string, limit int) ([]*github.RepositoryRelease, error) {
	args := m.Called(ctx, owner, name, limit)
	releases, _ := args.Get(0).([]*github.RepositoryRelease)
	return releases, args.Error(1)
}

func (m *MockGateway) SearchRepositories(ctx context.Context, query string, opts port.SearchOptions) (*port.RepoSearchResult, error) {
	args := m.Called(ctx, query, opts)
	res, _ := args.Get(0).(*port.RepoSearchResult)
	return res, args.Error(1)
}

func (m *MockGateway) RateLimit(ctx context.Context) (*domain.RateLimit, error) {
	args := m.Called(ctx)
	rl, _ := args.Get(0).(*domain.RateLimit)
	return rl, args.Error(1)
}

const testCurated = `
apps:
  - repo: acme/editor
    featured: true
    category: developer-tools
  - repo: acme/budget
    category: finance
  - repo: acme/ledger
    category: finance
  - repo: acme/player
    category: media
  - repo: acme/gone
    category: finance
`

func newRepo(id int64, name, description string, stars int, topics ...string) *github.Repository {
	return &github.Repository{
		ID:              github.Int64(id),
		Name:            github.String(name),
		FullName:        github.String("acme/" + name),
		Description:     github.String(description),
		StargazersCount: github.Int(stars),
		Topics:          topics,
		Owner:           &github.User{Login: github.String("acme")},
	}
}

func seedRepos() map[string]*github.Repository {
	return map[string]*github.Repository{
		"editor": newRepo(1, "editor", "A code editor", 500, "ide"),
		"budget": newRepo(2, "budget", "Envelope budgeting", 300, "budget"),
		"ledger": newRepo(3, "ledger", "Plain text accounting", 900, "cli"),
		"player": newRepo(4, "player", "Plays every codec", 100, "video"),
	}
}

// setupService 创建使用测试种子列表的服务，acme/gone 在上游不存在
func setupService(t *testing.T) (*CatalogService, *MockGateway) {
	t.Helper()
	list, err := curated.Parse([]byte(testCurated))
	require.NoError(t, err)

	gw := new(MockGateway)
	for name, repo := range seedRepos() {
		gw.On("GetRepository", mock.Anything, "acme", name).Return(repo, nil).Maybe()
	}
	gw.On("GetRepository", mock.Anything, "acme", "gone").Return(nil, nil).Maybe()

	return NewCatalogService(gw, WithCurated(list), WithConcurrency(2)), gw
}

func names(apps []domain.App) []string {
	out := make([]string, len(apps))
	for i, a := range apps {
		out[i] = a.Name
	}
	return out
}

func searchPage(start int64, n int) *port.RepoSearchResult {
	items := make([]*github.Repository, n)
	for i := range items {
		id := start + int64(i)
		items[i] = newRepo(id, fmt.Sprintf("repo-%d", id), "", 1, "game")
	}
	return &port.RepoSearchResult{Total: 1000, Items: items}
}

func TestCatalogService_GetApps(t *testing.T) {
	svc, _ := setupService(t)

	apps := svc.GetApps(context.Background(), 0)
	assert.Equal(t, []string{"editor", "budget", "ledger", "player"}, names(apps), "失败的条目被丢弃，顺序保持")
	assert.Equal(t, domain.CategoryDeveloperTools, apps[0].Category, "种子列表中的分类优先")
	assert.Equal(t, domain.CategoryFinance, apps[2].Category)

	assert.Len(t, svc.GetApps(context.Background(), 2), 2)
}

func TestCatalogService_GetApps_GatewayError(t *testing.T) {
	list, err := curated.Parse([]byte(testCurated))
	require.NoError(t, err)

	gw := new(MockGateway)
	gw.On("GetRepository", mock.Anything, "acme", "editor").Return(nil, context.DeadlineExceeded)
	gw.On("GetRepository", mock.Anything, "acme", mock.Anything).Return(newRepo(9, "x", "", 1), nil)

	apps := NewCatalogService(gw, WithCurated(list)).GetApps(context.Background(), 0)
	assert.Len(t, apps, 4)
}

func TestCatalogService_GetFeaturedApps(t *testing.T) {
	svc, gw := setupService(t)

	apps := svc.GetFeaturedApps(context.Background())
	assert.Equal(t, []string{"editor"}, names(apps))
	gw.AssertNumberOfCalls(t, "GetRepository", 1)
}

func TestCatalogService_GetAppsByCategory_SearchError(t *testing.T) {
	svc, gw := setupService(t)
	gw.On("SearchRepositories", mock.Anything, "topic:finance archived:false", mock.Anything).
		Return(nil, errors.New("search exploded"))

	apps := svc.GetAppsByCategory(context.Background(), "finance", 0)

	assert.Equal(t, []string{"budget", "ledger"}, names(apps))
	for _, app := range apps {
		assert.Equal(t, domain.CategoryFinance, app.Category)
	}
}

func TestCatalogService_GetAppsByCategory_SearchPanics(t *testing.T) {
	svc, gw := setupService(t)
	gw.On("SearchRepositories", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("nil map") })

	var apps []domain.App
	require.NotPanics(t, func() {
		apps = svc.GetAppsByCategory(context.Background(), "media", 0)
	})
	assert.Equal(t, []string{"player"}, names(apps))
}

func TestCatalogService_GetAppsByCategory_Unknown(t *testing.T) {
	svc, gw := setupService(t)

	apps := svc.GetAppsByCategory(context.Background(), "robotics", 10)
	assert.Empty(t, apps)
	gw.AssertNotCalled(t, "SearchRepositories", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_GetAppsByCategory_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		perPage   int
		pages     []*port.RepoSearchResult
		wantCalls int
		wantLen   int
	}{
		{"单页不足 limit", 30, 30, []*port.RepoSearchResult{searchPage(1, 12)}, 1, 12},
		{"短页停止翻页", 250, 100, []*port.RepoSearchResult{searchPage(1, 100), searchPage(101, 40)}, 2, 140},
		{"达到 limit 后截断", 150, 100, []*port.RepoSearchResult{searchPage(1, 100), searchPage(101, 100)}, 2, 150},
		{"满页也不超过页数上限", 100, 100, []*port.RepoSearchResult{searchPage(1, 100)}, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, gw := setupService(t)
			for i, page := range tt.pages {
				want := port.SearchOptions{Sort: "stars", Order: "desc", Page: i + 1, PerPage: tt.perPage}
				gw.On("SearchRepositories", mock.Anything, "topic:game archived:false", want).Return(page, nil).Once()
			}

			apps := svc.GetAppsByCategory(context.Background(), "games", tt.limit)

			assert.Len(t, apps, tt.wantLen)
			gw.AssertNumberOfCalls(t, "SearchRepositories", tt.wantCalls)
			for _, app := range apps {
				assert.Equal(t, domain.CategoryGames, app.Category)
			}
		})
	}
}

func TestCatalogService_GetAppsByCategory_ForcesCategory(t *testing.T) {
	svc, gw := setupService(t)
	gw.On("SearchRepositories", mock.Anything, "topic:finance archived:false", mock.Anything).
		Return(&port.RepoSearchResult{Items: []*github.Repository{newRepo(7, "tracker", "", 1, "react", "web")}}, nil)

	apps := svc.GetAppsByCategory(context.Background(), "Finance", 5)
	require.Len(t, apps, 1)
	assert.Equal(t, domain.CategoryFinance, apps[0].Category, "不走推断")
	assert.Equal(t, []domain.Platform{domain.PlatformWeb}, apps[0].Platforms)
}

func TestCatalogService_SearchApps_EmptyQuery(t *testing.T) {
	svc, gw := setupService(t)

	res := svc.SearchApps(context.Background(), "   ")
	assert.Equal(t, []string{"editor", "budget", "ledger", "player"}, names(res.Apps))
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
	gw.AssertNotCalled(t, "SearchRepositories", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_SearchApps_Recommendations(t *testing.T) {
	svc, gw := setupService(t)

	top := newRepo(100, "zed", "editor", 1000, "ide", "editor", "tools")
	primary := &port.RepoSearchResult{Total: 2, Items: []*github.Repository{top, newRepo(101, "helix", "", 10)}}
	recs := &port.RepoSearchResult{Items: []*github.Repository{
		newRepo(101, "helix", "", 10),
		newRepo(200, "lapce", "", 9),
		newRepo(201, "lite", "", 8),
		newRepo(202, "micro", "", 7),
		newRepo(203, "kakoune", "", 6),
		newRepo(204, "vis", "", 5),
	}}

	gw.On("SearchRepositories", mock.Anything, "editor in:name,description,readme archived:false",
		port.SearchOptions{Sort: "stars", Order: "desc", PerPage: 100}).Return(primary, nil).Once()
	gw.On("SearchRepositories", mock.Anything, "topic:ide archived:false",
		port.SearchOptions{Sort: "stars", Order: "desc", PerPage: 10}).Return(recs, nil).Once()

	res := svc.SearchApps(context.Background(), "editor")

	assert.Equal(t, []string{"zed", "helix"}, names(res.Apps))
	assert.Equal(t, domain.CategoryUtilities, res.Apps[1].Category, "没有覆盖，走推断")
	assert.Equal(t, []string{"lapce", "lite", "micro", "kakoune"}, names(res.Recommendations))
	gw.AssertExpectations(t)
}

func TestCatalogService_SearchApps_LanguageRecommendations(t *testing.T) {
	svc, gw := setupService(t)

	top := newRepo(100, "ripgrep", "", 1000)
	top.Language = github.String("Rust")
	gw.On("SearchRepositories", mock.Anything, "grep in:name,description,readme archived:false", mock.Anything).
		Return(&port.RepoSearchResult{Items: []*github.Repository{top}}, nil)
	gw.On("SearchRepositories", mock.Anything, "language:Rust archived:false", mock.Anything).
		Return(&port.RepoSearchResult{Items: []*github.Repository{newRepo(5, "fd", "", 1)}}, nil)

	res := svc.SearchApps(context.Background(), "grep")
	assert.Equal(t, []string{"fd"}, names(res.Recommendations))
}

func TestCatalogService_SearchApps_NoRecommendationSource(t *testing.T) {
	svc, gw := setupService(t)
	gw.On("SearchRepositories", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.RepoSearchResult{Items: []*github.Repository{newRepo(1, "bare", "", 1)}}, nil).Once()

	res := svc.SearchApps(context.Background(), "bare")
	assert.Len(t, res.Apps, 1)
	assert.Empty(t, res.Recommendations)
	gw.AssertNumberOfCalls(t, "SearchRepositories", 1)
}

func TestCatalogService_SearchApps_Fallback(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"按名称匹配", "LEDGER", []string{"ledger"}},
		{"按描述匹配", "codec", []string{"player"}},
		{"都不匹配", "kubernetes", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, gw := setupService(t)
			gw.On("SearchRepositories", mock.Anything, mock.Anything, mock.Anything).
				Return(nil, errors.New("rate limited"))

			res := svc.SearchApps(context.Background(), tt.query)
			assert.Equal(t, tt.want, names(res.Apps))
			assert.Empty(t, res.Recommendations)
		})
	}
}

func TestCatalogService_SearchApps_RecommendationErrorFallsBack(t *testing.T) {
	svc, gw := setupService(t)
	gw.On("SearchRepositories", mock.Anything, "budget in:name,description,readme archived:false", mock.Anything).
		Return(&port.RepoSearchResult{Items: []*github.Repository{newRepo(1, "x", "", 1, "money")}}, nil)
	gw.On("SearchRepositories", mock.Anything, "topic:money archived:false", mock.Anything).
		Return(nil, errors.New("boom"))

	res := svc.SearchApps(context.Background(), "budget")
	assert.Equal(t, []string{"budget"}, names(res.Apps), "降级为精选列表过滤")
	assert.Empty(t, res.Recommendations)
}

// panicMapper 对指定名称的仓库 panic
type panicMapper struct {
	inner *catalog.Mapper
	bad   string
}

func (p panicMapper) Map(repo *github.Repository, override string) domain.App {
	if repo.GetName() == p.bad {
		panic("unexpected record shape")
	}
	return p.inner.Map(repo, override)
}

func TestCatalogService_MappingPanicDropsItem(t *testing.T) {
	svc, gw := setupService(t)
	svc.mapper = panicMapper{inner: catalog.NewMapper(), bad: "budget"}

	assert.Equal(t, []string{"editor", "ledger", "player"}, names(svc.GetApps(context.Background(), 0)))

	gw.On("SearchRepositories", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.RepoSearchResult{Items: []*github.Repository{
			newRepo(1, "budget", "", 1), newRepo(2, "ok", "", 1),
		}}, nil)
	res := svc.SearchApps(context.Background(), "q")
	assert.Equal(t, []string{"ok"}, names(res.Apps))
}

func TestCatalogService_GetAppDetail(t *testing.T) {
	svc, gw := setupService(t)
	gw.On("GetRepository", mock.Anything, "acme", "missing").Return(nil, nil)
	gw.On("GetReadme", mock.Anything, "acme", "budget").Return("# Budget", nil)
	gw.On("GetReleases", mock.Anything, "acme", "budget", 10).Return([]*github.RepositoryRelease{
		{TagName: github.String("v1.0.0"), Assets: []*github.ReleaseAsset{
			{Name: github.String("budget.AppImage"), Size: github.Int(1024)},
		}},
	}, nil)

	assert.Nil(t, svc.GetAppDetail(context.Background(), "acme", "missing"))

	detail := svc.GetAppDetail(context.Background(), "acme", "budget")
	require.NotNil(t, detail)
	assert.Equal(t, domain.CategoryFinance, detail.Category, "使用种子列表中的分类")
	assert.Contains(t, detail.ReadmeHTML, "<h1>Budget</h1>")
	require.Len(t, detail.Downloads, 1)
	assert.Equal(t, domain.DownloadAppImage, detail.Downloads[0].Type)
}

func TestCatalogService_GetAppDetail_Cancelled(t *testing.T) {
	svc, gw := setupService(t)
	gw.On("GetReadme", mock.Anything, "acme", "editor").Return("", context.Canceled)
	gw.On("GetReleases", mock.Anything, "acme", "editor", 10).Return(nil, context.Canceled)

	assert.Nil(t, svc.GetAppDetail(context.Background(), "acme", "editor"))
}

func TestCatalogService_GetTrending(t *testing.T) {
	svc, _ := setupService(t)

	apps := svc.GetTrending(context.Background(), 3)
	assert.Equal(t, []string{"ledger", "editor", "budget"}, names(apps))
}

func TestCatalogService_GetRecentlyUpdated(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	list, err := curated.Parse([]byte("apps:\n  - repo: acme/a\n  - repo: acme/b\n  - repo: acme/c\n"))
	require.NoError(t, err)

	gw := new(MockGateway)
	for name, age := range map[string]int{"a": 40, "b": 2, "c": 10} {
		repo := newRepo(1, name, "", 1)
		repo.UpdatedAt = &github.Timestamp{Time: now.AddDate(0, 0, -age)}
		gw.On("GetRepository", mock.Anything, "acme", name).Return(repo, nil)
	}

	svc := NewCatalogService(gw, WithCurated(list))
	svc.nowFunc = func() time.Time { return now }

	apps := svc.GetRecentlyUpdated(context.Background(), 30, 0)
	assert.Equal(t, []string{"b", "c"}, names(apps))
}

func TestFilterByUpdatedWithin(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	apps := []domain.App{
		{Name: "fresh", LastUpdated: now.Add(-time.Hour)},
		{Name: "edge", LastUpdated: now.AddDate(0, 0, -7)},
		{Name: "stale", LastUpdated: now.AddDate(0, 0, -8)},
	}

	assert.Equal(t, []string{"fresh", "edge"}, names(FilterByUpdatedWithin(apps, 7, now)))
	assert.Empty(t, FilterByUpdatedWithin(nil, 7, now))
}

func TestCatalogService_Categories(t *testing.T) {
	svc, _ := setupService(t)

	infos := svc.Categories()
	require.Len(t, infos, len(domain.Categories))

	counts := map[domain.Category]int{}
	for _, info := range infos {
		counts[info.ID] = info.AppCount
	}
	assert.Equal(t, 3, counts[domain.CategoryFinance])
	assert.Equal(t, 1, counts[domain.CategoryMedia])
	assert.Zero(t, counts[domain.CategoryGames])
	assert.Zero(t, domain.Categories[0].AppCount, "不修改全局表")
}

func TestKeywords_Primary(t *testing.T) {
	k := DefaultKeywords()
	for _, info := range domain.Categories {
		_, ok := k.Primary(info.ID)
		assert.True(t, ok, "分类 %s 缺少关键词", info.ID)
	}

	kw, _ := k.Primary(domain.CategoryCommunication)
	assert.Equal(t, "chat", kw)

	_, ok := Keywords{}.Primary(domain.CategoryGames)
	assert.False(t, ok)
}

package port

import (
	"context"

	"appforge/internal/domain"

	"github.com/google/go-github/v53/github"
)

// SearchOptions 仓库搜索参数；Topics/MinStars/Language 会被拼成查询限定符
type SearchOptions struct {
	Topics   []string
	MinStars int
	Language string
	Sort     string // stars | forks | updated
	Order    string // asc | desc
	Page     int
	PerPage  int // 上限 100
}

// RepoSearchResult 一页搜索结果
type RepoSearchResult struct {
	Total int
	Items []*github.Repository
}

// Gateway (数据网关): 只读访问 GitHub 仓库元数据
//
// 上游失败 (非 2xx、网络错误) 在网关内部被记录并吸收，返回 nil 或空结果且 error 为 nil；
// 只有调用方的 ctx 已经结束时才返回 error。
type Gateway interface {
	// GetRepository 仓库不存在或拉取失败时返回 nil
	GetRepository(ctx context.Context, owner, name string) (*github.Repository, error)

	// GetReadme 返回解码后的 README 文本，没有或失败时返回空字符串
	GetReadme(ctx context.Context, owner, name string) (string, error)

	// GetReleases 最多返回 limit 个 release
	GetReleases(ctx context.Context, owner, name string, limit int) ([]*github.RepositoryRelease, error)

	// SearchRepositories 失败时返回空结果 (非 nil)
	SearchRepositories(ctx context.Context, query string, opts SearchOptions) (*RepoSearchResult, error)

	// RateLimit 当前 token 的 core 速率限制，失败时返回 nil
	RateLimit(ctx context.Context) (*domain.RateLimit, error)
}

package catalog

import (
	"strconv"
	"strings"

	"appforge/internal/domain"

	"github.com/google/go-github/v53/github"
)

const (
	// DefaultFeaturedTag 带有该 topic 的仓库被标记为精选
	DefaultFeaturedTag = "appforge-featured"
	// NoDescription 仓库没有描述时的占位文本
	NoDescription = "No description available"
)

// Mapper 把 GitHub 仓库转换成目录条目。纯函数，不做任何 I/O。
type Mapper struct {
	rules       Rules
	featuredTag string
	verified    map[string]bool
}

// MapperOption 配置 Mapper
type MapperOption func(*Mapper)

// WithRules 替换分类查找表
func WithRules(r Rules) MapperOption {
	return func(m *Mapper) {
		if r != nil {
			m.rules = r
		}
	}
}

// WithFeaturedTag 替换精选标记 topic
func WithFeaturedTag(tag string) MapperOption {
	return func(m *Mapper) {
		if tag != "" {
			m.featuredTag = tag
		}
	}
}

// WithVerified 设置认证仓库列表 ("owner/name"，忽略大小写)
func WithVerified(fullNames ...string) MapperOption {
	return func(m *Mapper) {
		for _, n := range fullNames {
			if n = strings.TrimSpace(n); n != "" {
				m.verified[strings.ToLower(n)] = true
			}
		}
	}
}

// NewMapper 创建 Mapper，默认使用 DefaultRules 和 DefaultFeaturedTag
func NewMapper(opts ...MapperOption) *Mapper {
	m := &Mapper{
		rules:       DefaultRules(),
		featuredTag: DefaultFeaturedTag,
		verified:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Rules 返回 Mapper 使用的查找表
func (m *Mapper) Rules() Rules {
	return m.rules
}

// Map 把仓库转换为 App。override 是合法分类时优先使用，否则按 topic 推断。
// repo 为 nil 或缺字段时使用占位值，不会 panic。
func (m *Mapper) Map(repo *github.Repository, override string) domain.App {
	if repo == nil {
		repo = &github.Repository{}
	}
	owner := repo.GetOwner() // nil owner 时 getter 返回零值

	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	// override 必须与分类值完全一致，大小写不同视为非法
	category := domain.Category(override)
	if !category.Valid() {
		category = m.rules.InferCategory(topics)
	}

	description := repo.GetDescription()
	if description == "" {
		description = NoDescription
	}

	license := domain.LicenseOther
	if repo.License != nil {
		license = domain.ParseLicense(repo.License.GetSPDXID())
	}

	return domain.App{
		ID:               strconv.FormatInt(repo.GetID(), 10),
		Slug:             strings.ToLower(repo.GetName()),
		Name:             repo.GetName(),
		ShortDescription: description,
		Logo:             owner.GetAvatarURL(),
		Maintainer: domain.Maintainer{
			Name:      owner.GetLogin(),
			Username:  owner.GetLogin(),
			Avatar:    owner.GetAvatarURL(),
			GitHubURL: owner.GetHTMLURL(),
		},
		Stats: domain.AppStats{
			Stars:      repo.GetStargazersCount(),
			Forks:      repo.GetForksCount(),
			Watchers:   repo.GetWatchersCount(),
			OpenIssues: repo.GetOpenIssuesCount(),
		},
		Category:    category,
		Platforms:   InferPlatforms(topics),
		License:     license,
		LastUpdated: repo.GetUpdatedAt().Time,
		IsVerified:  m.verified[strings.ToLower(repo.GetFullName())],
		IsFeatured:  containsTag(topics, m.featuredTag),
		Topics:      topics,
	}
}

// MapAll 映射一批仓库，丢弃 nil
func (m *Mapper) MapAll(repos []*github.Repository, override string) []domain.App {
	apps := make([]domain.App, 0, len(repos))
	for _, repo := range repos {
		if repo == nil {
			continue
		}
		apps = append(apps, m.Map(repo, override))
	}
	return apps
}

func containsTag(topics []string, tag string) bool {
	for _, t := range topics {
		if t == tag {
			return true
		}
	}
	return false
}

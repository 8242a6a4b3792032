// Package curated 提供静态配置的精选应用种子列表
package curated

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"appforge/internal/common"
	"appforge/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed curated.yaml
var defaultList []byte

// DefaultLimit 首页默认展示数量
const DefaultLimit = 50

// Entry 一个种子条目
type Entry struct {
	Repo     string `yaml:"repo"`
	Featured bool   `yaml:"featured"`
	Category string `yaml:"category"` // 可选，非法值在映射时被忽略
}

// Owner 返回仓库所有者
func (e Entry) Owner() string {
	owner, _, _ := strings.Cut(e.Repo, "/")
	return owner
}

// Name 返回仓库名
func (e Entry) Name() string {
	_, name, _ := strings.Cut(e.Repo, "/")
	return name
}

type file struct {
	Apps []Entry `yaml:"apps"`
}

// List 不可变的种子列表
type List struct {
	entries []Entry
}

// Default 加载内置列表
func Default() *List {
	l, err := Parse(defaultList)
	if err != nil {
		panic(fmt.Sprintf("curated: embedded list is invalid: %v", err))
	}
	return l
}

// Load 从文件加载；path 为空时使用内置列表
func Load(path string) (*List, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeConfig, "read curated list", err)
	}
	return Parse(data)
}

// Parse 解析 YAML，拒绝不是 "owner/name" 形式的条目
func Parse(data []byte) (*List, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, common.WrapError(common.ErrCodeConfig, "parse curated list", err)
	}

	seen := make(map[string]bool, len(f.Apps))
	for i, e := range f.Apps {
		e.Repo = strings.TrimSpace(e.Repo)
		owner, name, ok := strings.Cut(e.Repo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return nil, common.NewError(common.ErrCodeConfig,
				fmt.Sprintf("curated entry %d: %q is not owner/name", i, e.Repo))
		}
		key := strings.ToLower(e.Repo)
		if seen[key] {
			return nil, common.NewError(common.ErrCodeConfig,
				fmt.Sprintf("curated entry %d: duplicate repository %q", i, e.Repo))
		}
		seen[key] = true
		f.Apps[i] = e
	}
	return &List{entries: f.Apps}, nil
}

// Configs 返回前 limit 个条目 (limit <= 0 表示全部)，featuredOnly 时只保留精选
func (l *List) Configs(limit int, featuredOnly bool) []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if featuredOnly && !e.Featured {
			continue
		}
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Repos 返回前 limit 个条目的 "owner/name"
func (l *List) Repos(limit int, featuredOnly bool) []string {
	configs := l.Configs(limit, featuredOnly)
	repos := make([]string, len(configs))
	for i, e := range configs {
		repos[i] = e.Repo
	}
	return repos
}

// Len 条目数量
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// CountByCategory 统计每个显式分类的条目数
func (l *List) CountByCategory() map[domain.Category]int {
	counts := make(map[domain.Category]int)
	if l == nil {
		return counts
	}
	for _, e := range l.entries {
		if c := domain.Category(e.Category); c.Valid() {
			counts[c]++
		}
	}
	return counts
}

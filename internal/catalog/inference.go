package catalog

import (
	"strings"

	"appforge/internal/domain"
)

// FallbackPlatform 没有任何 topic 是平台标识时使用的平台
const FallbackPlatform = domain.PlatformLinux

// TagRule 一条 topic → 分类规则
type TagRule struct {
	Tag      string
	Category domain.Category
}

// Rules 有序的 topic → 分类查找表。
// 同一个 tag 出现多次时以第一条为准。
type Rules []TagRule

// DefaultRules 返回内置的查找表
func DefaultRules() Rules {
	return Rules{
		{"web", domain.CategoryWebApps},
		{"react", domain.CategoryWebApps},
		{"nextjs", domain.CategoryWebApps},
		{"vue", domain.CategoryWebApps},

		{"android", domain.CategoryAndroid},
		{"mobile", domain.CategoryAndroid},
		{"ios", domain.CategoryAndroid},

		{"desktop", domain.CategoryDesktop},
		{"windows", domain.CategoryDesktop},
		{"macos", domain.CategoryDesktop},
		{"linux", domain.CategoryDesktop},
		{"electron", domain.CategoryDesktop},
		{"tauri", domain.CategoryDesktop},

		{"ai", domain.CategoryAIML},
		{"machine-learning", domain.CategoryAIML},
		{"gpt", domain.CategoryAIML},
		{"llm", domain.CategoryAIML},

		{"cli", domain.CategoryCLITools},
		{"terminal", domain.CategoryCLITools},
		{"shell", domain.CategoryCLITools},

		{"dev-tools", domain.CategoryDeveloperTools},
		{"developer-tools", domain.CategoryDeveloperTools},

		{"game", domain.CategoryGames},
		{"gaming", domain.CategoryGames},

		{"security", domain.CategorySecurity},
		{"privacy", domain.CategorySecurity},

		{"utilities", domain.CategoryUtilities},
		{"tool", domain.CategoryUtilities},

		{"productivity", domain.CategoryProductivity},
		{"note-taking", domain.CategoryProductivity},

		{"media", domain.CategoryMedia},
		{"video", domain.CategoryMedia},
		{"audio", domain.CategoryMedia},
		{"music", domain.CategoryMedia},

		{"communication", domain.CategoryCommunication},
		{"chat", domain.CategoryCommunication},
		{"matrix", domain.CategoryCommunication},

		{"finance", domain.CategoryFinance},
		{"budget", domain.CategoryFinance},
		{"expense", domain.CategoryFinance},
		{"accounting", domain.CategoryFinance},
		{"money", domain.CategoryFinance},
	}
}

// Lookup 忽略大小写查找 tag 对应的分类
func (r Rules) Lookup(tag string) (domain.Category, bool) {
	tag = strings.ToLower(tag)
	for _, rule := range r {
		if strings.ToLower(rule.Tag) == tag {
			return rule.Category, true
		}
	}
	return "", false
}

// InferCategory 返回按输入顺序第一个命中规则的 topic 的分类，都不命中时返回 utilities。
// 结果依赖上游给出的 topic 顺序。
func (r Rules) InferCategory(topics []string) domain.Category {
	for _, topic := range topics {
		if c, ok := r.Lookup(topic); ok {
			return c
		}
	}
	return domain.DefaultCategory
}

// InferPlatforms 收集本身就是平台标识的 topic (小写后精确匹配)，
// 保持首次出现的顺序去重；为空时返回 [linux]。
func InferPlatforms(topics []string) []domain.Platform {
	var platforms []domain.Platform
	seen := make(map[domain.Platform]bool, len(topics))
	for _, topic := range topics {
		p, ok := domain.ParsePlatform(strings.ToLower(topic))
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		platforms = append(platforms, p)
	}
	if len(platforms) == 0 {
		return []domain.Platform{FallbackPlatform}
	}
	return platforms
}

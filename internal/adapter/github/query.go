package github

import (
	"fmt"
	"strings"

	"appforge/internal/port"
)

const (
	defaultSort    = "stars"
	defaultOrder   = "desc"
	defaultPerPage = 30
	maxPerPage     = 100
)

// BuildQuery 把基础查询和限定符拼成 GitHub 搜索语法
// 例如 BuildQuery("", {Topics: [cli], MinStars: 100}) => "topic:cli stars:>=100"
func BuildQuery(query string, opts port.SearchOptions) string {
	parts := make([]string, 0, len(opts.Topics)+3)
	if q := strings.TrimSpace(query); q != "" {
		parts = append(parts, q)
	}
	for _, topic := range opts.Topics {
		if topic = strings.TrimSpace(topic); topic != "" {
			parts = append(parts, "topic:"+topic)
		}
	}
	if opts.MinStars > 0 {
		parts = append(parts, fmt.Sprintf("stars:>=%d", opts.MinStars))
	}
	if lang := strings.TrimSpace(opts.Language); lang != "" {
		parts = append(parts, "language:"+lang)
	}
	return strings.Join(parts, " ")
}

// normalizeOptions 填默认值并把每页条数限制在 GitHub 允许的范围内
func normalizeOptions(opts port.SearchOptions) port.SearchOptions {
	if opts.Sort == "" {
		opts.Sort = defaultSort
	}
	if opts.Order == "" {
		opts.Order = defaultOrder
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = defaultPerPage
	}
	if opts.PerPage > maxPerPage {
		opts.PerPage = maxPerPage
	}
	return opts
}

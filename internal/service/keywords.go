package service

import "appforge/internal/domain"

// Keywords 分类 → 搜索关键词候选；分类列表只使用第一个关键词
type Keywords map[domain.Category][]string

// DefaultKeywords 内置关键词表
func DefaultKeywords() Keywords {
	return Keywords{
		domain.CategoryWebApps:        {"webapp", "web-app", "react", "vue", "nextjs", "frontend"},
		domain.CategoryAndroid:        {"android", "mobile", "apk", "flutter", "react-native"},
		domain.CategoryDesktop:        {"desktop", "electron", "tauri", "gtk", "qt"},
		domain.CategoryAIML:           {"ai", "machine-learning", "gpt", "llm", "neural-network", "deep-learning"},
		domain.CategoryCLITools:       {"cli", "terminal", "command-line", "shell", "bash"},
		domain.CategoryDeveloperTools: {"developer-tools", "devtools", "ide", "editor", "debugging"},
		domain.CategoryUtilities:      {"utility", "tool", "helper", "automation"},
		domain.CategoryGames:          {"game", "gaming", "gamedev", "game-engine"},
		domain.CategoryProductivity:   {"productivity", "note-taking", "todo", "organizer", "task-management"},
		domain.CategoryMedia:          {"media", "video", "audio", "music", "video-player", "media-player", "entertainment"},
		domain.CategoryCommunication:  {"chat", "messaging", "communication", "matrix", "discord"},
		domain.CategorySecurity:       {"security", "privacy", "encryption", "password-manager", "vpn"},
		domain.CategoryFinance:        {"finance", "budget", "accounting", "expense-tracker", "money"},
	}
}

// Primary 返回分类的第一个关键词
func (k Keywords) Primary(c domain.Category) (string, bool) {
	terms := k[c]
	if len(terms) == 0 {
		return "", false
	}
	return terms[0], true
}

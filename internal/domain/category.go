package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category 应用分类 (封闭枚举，每个 App 恰好一个)
type Category string

const (
	CategoryWebApps        Category = "web-apps"
	CategoryAndroid        Category = "android"
	CategoryDesktop        Category = "desktop"
	CategoryAIML           Category = "ai-ml"
	CategoryCLITools       Category = "cli-tools"
	CategoryDeveloperTools Category = "developer-tools"
	CategoryUtilities      Category = "utilities"
	CategoryGames          Category = "games"
	CategoryProductivity   Category = "productivity"
	CategoryMedia          Category = "media"
	CategoryCommunication  Category = "communication"
	CategorySecurity       Category = "security"
	CategoryFinance        Category = "finance"
)

// DefaultCategory 没有任何 topic 命中时使用的分类
const DefaultCategory = CategoryUtilities

// CategoryInfo 分类在 UI 上的展示信息
type CategoryInfo struct {
	ID          Category `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	AppCount    int      `json:"appCount"`
}

// Categories 展示顺序即分类页的顺序
var Categories = []CategoryInfo{
	{ID: CategoryWebApps, Name: "Web Apps", Icon: "code-2", Color: "blue",
		Description: "Applications that run smoothly in your modern web browser"},
	{ID: CategoryCLITools, Name: "CLI Tools", Icon: "terminal", Color: "slate",
		Description: "Powerful command line utilities and developer instruments"},
	{ID: CategoryAndroid, Name: "Mobile", Icon: "smartphone", Color: "green",
		Description: "Native applications designed for Android and iOS devices"},
	{ID: CategoryDesktop, Name: "Desktop", Icon: "monitor", Color: "purple",
		Description: "Robust native software for Windows, macOS, and Linux"},
	{ID: CategoryGames, Name: "Games", Icon: "gamepad-2", Color: "red",
		Description: "Entertaining open source games and recreational software"},
	{ID: CategorySecurity, Name: "Security & Privacy", Icon: "shield", Color: "emerald",
		Description: "Tools that keep your data, passwords and traffic safe"},
	{ID: CategoryUtilities, Name: "Utilities", Icon: "wrench", Color: "orange",
		Description: "Handy helpers for everyday tasks"},
	{ID: CategoryAIML, Name: "AI & Machine Learning", Icon: "brain-circuit", Color: "pink",
		Description: "Models, assistants and tooling for machine learning"},
	{ID: CategoryDeveloperTools, Name: "Developer Tools", Icon: "layers", Color: "indigo",
		Description: "Editors, debuggers and everything that helps you ship code"},
	{ID: CategoryProductivity, Name: "Productivity", Icon: "check-circle-2", Color: "teal",
		Description: "Notes, tasks and organizers to get things done"},
	{ID: CategoryMedia, Name: "Media & Entertainment", Icon: "film", Color: "rose",
		Description: "Players, editors and streaming for audio and video"},
	{ID: CategoryCommunication, Name: "Communication", Icon: "message-square", Color: "sky",
		Description: "Chat, messaging and collaboration"},
	{ID: CategoryFinance, Name: "Finance", Icon: "dollar-sign", Color: "yellow",
		Description: "Budgeting, accounting and expense tracking"},
}

// Valid 判断是否属于封闭的分类集合
func (c Category) Valid() bool {
	for _, info := range Categories {
		if info.ID == c {
			return true
		}
	}
	return false
}

// ParseCategory 忽略大小写和首尾空白解析分类
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// LookupCategoryInfo 返回分类的展示信息
func LookupCategoryInfo(c Category) (CategoryInfo, bool) {
	for _, info := range Categories {
		if info.ID == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// DisplayName 返回分类的展示名称；未知分类把第一个 "-" 换成空格后首字母大写
func DisplayName(category string) string {
	if info, ok := LookupCategoryInfo(Category(strings.ToLower(category))); ok {
		return info.Name
	}
	if category == "" {
		return ""
	}
	name := strings.Replace(category, "-", " ", 1)
	return cases.Title(language.English, cases.NoLower).String(name[:1]) + name[1:]
}

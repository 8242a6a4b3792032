package domain

import "time"

// Platform 目标运行平台 (封闭枚举)
type Platform string

const (
	PlatformWindows       Platform = "windows"
	PlatformMacOS         Platform = "macos"
	PlatformLinux         Platform = "linux"
	PlatformAndroid       Platform = "android"
	PlatformIOS           Platform = "ios"
	PlatformWeb           Platform = "web"
	PlatformCrossPlatform Platform = "cross-platform"
)

// AllPlatforms 按声明顺序列出全部平台
var AllPlatforms = []Platform{
	PlatformWindows, PlatformMacOS, PlatformLinux, PlatformAndroid,
	PlatformIOS, PlatformWeb, PlatformCrossPlatform,
}

// ParsePlatform 精确匹配平台标识 (只接受小写)
func ParsePlatform(s string) (Platform, bool) {
	for _, p := range AllPlatforms {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// License 受控的开源协议标识 (SPDX)
type License string

const (
	LicenseMIT       License = "MIT"
	LicenseApache2   License = "Apache-2.0"
	LicenseGPL3      License = "GPL-3.0"
	LicenseGPL2      License = "GPL-2.0"
	LicenseAGPL3     License = "AGPL-3.0"
	LicenseBSD3      License = "BSD-3-Clause"
	LicenseBSD2      License = "BSD-2-Clause"
	LicenseISC       License = "ISC"
	LicenseMPL2      License = "MPL-2.0"
	LicenseLGPL3     License = "LGPL-3.0"
	LicenseUnlicense License = "Unlicense"
	LicenseOther     License = "Other"
)

var knownLicenses = map[string]License{
	string(LicenseMIT):       LicenseMIT,
	string(LicenseApache2):   LicenseApache2,
	string(LicenseGPL3):      LicenseGPL3,
	string(LicenseGPL2):      LicenseGPL2,
	string(LicenseAGPL3):     LicenseAGPL3,
	string(LicenseBSD3):      LicenseBSD3,
	string(LicenseBSD2):      LicenseBSD2,
	string(LicenseISC):       LicenseISC,
	string(LicenseMPL2):      LicenseMPL2,
	string(LicenseLGPL3):     LicenseLGPL3,
	string(LicenseUnlicense): LicenseUnlicense,
}

// ParseLicense 把 SPDX 标识映射为受控协议，未知或为空时返回 Other
func ParseLicense(spdx string) License {
	if l, ok := knownLicenses[spdx]; ok {
		return l
	}
	return LicenseOther
}

// Maintainer 维护者信息 (取自仓库 owner)
type Maintainer struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	GitHubURL string `json:"githubUrl"`
}

// AppStats 仓库统计数据
type AppStats struct {
	Stars      int `json:"stars"`
	Forks      int `json:"forks"`
	Watchers   int `json:"watchers"`
	OpenIssues int `json:"openIssues"`
}

// App 代表目录中的一个应用 (由 GitHub 仓库推导而来，每次请求重新计算)
type App struct {
	ID               string     `json:"id"` // 与 GitHub 仓库 ID 相同
	Slug             string     `json:"slug"`
	Name             string     `json:"name"`
	ShortDescription string     `json:"shortDescription"`
	Logo             string     `json:"logo"`
	Maintainer       Maintainer `json:"maintainer"`
	Stats            AppStats   `json:"stats"`
	Category         Category   `json:"category"`
	Platforms        []Platform `json:"platforms"` // 永远非空
	License          License    `json:"license"`
	LastUpdated      time.Time  `json:"lastUpdated"`
	IsVerified       bool       `json:"isVerified"`
	IsFeatured       bool       `json:"isFeatured"`
	Topics           []string   `json:"topics"`
}

// DownloadType 可下载安装包的类型
type DownloadType string

const (
	DownloadAPK      DownloadType = "apk"
	DownloadEXE      DownloadType = "exe"
	DownloadDMG      DownloadType = "dmg"
	DownloadAppImage DownloadType = "appimage"
	DownloadDEB      DownloadType = "deb"
	DownloadRPM      DownloadType = "rpm"
	DownloadZIP      DownloadType = "zip"
	DownloadTarGz    DownloadType = "tar.gz"
	DownloadMSI      DownloadType = "msi"
	DownloadPKG      DownloadType = "pkg"
)

// Download 一个 release 附件
type Download struct {
	Platform      Platform     `json:"platform"`
	Type          DownloadType `json:"type"`
	URL           string       `json:"url"`
	FileName      string       `json:"fileName"`
	Size          string       `json:"size"`
	SizeBytes     int64        `json:"sizeBytes"`
	ContentType   string       `json:"contentType,omitempty"`
	DownloadCount int          `json:"downloadCount"`
	Version       string       `json:"version,omitempty"`
}

// Release 一个发布版本
type Release struct {
	Version      string     `json:"version"`
	Name         string     `json:"name"`
	Date         time.Time  `json:"date"`
	Notes        string     `json:"notes"` // markdown
	URL          string     `json:"url"`
	IsPreRelease bool       `json:"isPreRelease"`
	Assets       []Download `json:"assets"`
}

// AppDetail 详情页使用的扩展信息
type AppDetail struct {
	App
	RepoURL       string     `json:"repoUrl"`
	Homepage      string     `json:"homepage,omitempty"`
	Language      string     `json:"language,omitempty"`
	DefaultBranch string     `json:"defaultBranch"`
	CreatedAt     time.Time  `json:"createdAt"`
	Readme        string     `json:"readme"`
	ReadmeHTML    string     `json:"readmeHtml"`
	Releases      []Release  `json:"releases"`
	Downloads     []Download `json:"downloads"` // 最新 release 中可下载的附件
}

// SearchResult 搜索结果 + 相关推荐
type SearchResult struct {
	Apps            []App `json:"apps"`
	Recommendations []App `json:"recommendations"`
}

// RateLimit GitHub API 速率限制状态
type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

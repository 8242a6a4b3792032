package catalog

import (
	"bytes"
	"strings"

	"appforge/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/google/go-github/v53/github"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// assetKind 按文件扩展名识别的安装包类型
type assetKind struct {
	suffix   string
	typ      domain.DownloadType
	platform domain.Platform
}

// assetKinds 按顺序匹配，.tar.gz 需要排在其它后缀前面
var assetKinds = []assetKind{
	{".tar.gz", domain.DownloadTarGz, domain.PlatformCrossPlatform},
	{".apk", domain.DownloadAPK, domain.PlatformAndroid},
	{".exe", domain.DownloadEXE, domain.PlatformWindows},
	{".msi", domain.DownloadMSI, domain.PlatformWindows},
	{".dmg", domain.DownloadDMG, domain.PlatformMacOS},
	{".pkg", domain.DownloadPKG, domain.PlatformMacOS},
	{".deb", domain.DownloadDEB, domain.PlatformLinux},
	{".rpm", domain.DownloadRPM, domain.PlatformLinux},
	{".appimage", domain.DownloadAppImage, domain.PlatformLinux},
	{".zip", domain.DownloadZIP, domain.PlatformCrossPlatform},
}

// ClassifyAsset 根据文件名判断安装包类型和平台，不可下载的附件返回 false
func ClassifyAsset(fileName string) (domain.DownloadType, domain.Platform, bool) {
	name := strings.ToLower(fileName)
	for _, k := range assetKinds {
		if strings.HasSuffix(name, k.suffix) {
			return k.typ, k.platform, true
		}
	}
	return "", "", false
}

// DetailBuilder 组合仓库、README 和 release 生成详情
type DetailBuilder struct {
	mapper *Mapper
	md     goldmark.Markdown
}

// NewDetailBuilder 创建详情构建器，README 按 GFM 渲染，原始 HTML 被忽略
func NewDetailBuilder(m *Mapper) *DetailBuilder {
	if m == nil {
		m = NewMapper()
	}
	return &DetailBuilder{
		mapper: m,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Build 生成 AppDetail，repo 为 nil 时返回 nil
func (b *DetailBuilder) Build(repo *github.Repository, readme string, releases []*github.RepositoryRelease) *domain.AppDetail {
	if repo == nil {
		return nil
	}

	detail := &domain.AppDetail{
		App:           b.mapper.Map(repo, ""),
		RepoURL:       repo.GetHTMLURL(),
		Homepage:      repo.GetHomepage(),
		Language:      repo.GetLanguage(),
		DefaultBranch: repo.GetDefaultBranch(),
		CreatedAt:     repo.GetCreatedAt().Time,
		Readme:        readme,
		ReadmeHTML:    b.RenderMarkdown(readme),
		Releases:      make([]domain.Release, 0, len(releases)),
		Downloads:     []domain.Download{},
	}

	for _, r := range releases {
		if r == nil || r.GetDraft() {
			continue
		}
		detail.Releases = append(detail.Releases, mapRelease(r))
	}
	if latest := latestRelease(detail.Releases); latest != nil {
		detail.Downloads = latest.Assets
	}
	return detail
}

// RenderMarkdown 渲染失败时返回空字符串
func (b *DetailBuilder) RenderMarkdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := b.md.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func mapRelease(r *github.RepositoryRelease) domain.Release {
	release := domain.Release{
		Version:      r.GetTagName(),
		Name:         r.GetName(),
		Date:         r.GetPublishedAt().Time,
		Notes:        r.GetBody(),
		URL:          r.GetHTMLURL(),
		IsPreRelease: r.GetPrerelease(),
		Assets:       []domain.Download{},
	}
	if release.Name == "" {
		release.Name = release.Version
	}

	for _, a := range r.Assets {
		typ, platform, ok := ClassifyAsset(a.GetName())
		if !ok {
			continue
		}
		size := int64(a.GetSize())
		release.Assets = append(release.Assets, domain.Download{
			Platform:      platform,
			Type:          typ,
			URL:           a.GetBrowserDownloadURL(),
			FileName:      a.GetName(),
			Size:          humanize.Bytes(uint64(size)),
			SizeBytes:     size,
			ContentType:   a.GetContentType(),
			DownloadCount: a.GetDownloadCount(),
			Version:       release.Version,
		})
	}
	return release
}

// latestRelease 优先返回第一个正式版本，没有时返回第一个预发布版本
func latestRelease(releases []domain.Release) *domain.Release {
	for i := range releases {
		if !releases[i].IsPreRelease {
			return &releases[i]
		}
	}
	if len(releases) > 0 {
		return &releases[0]
	}
	return nil
}

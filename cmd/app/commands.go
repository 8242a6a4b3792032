package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"appforge/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newAppsCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List the curated apps",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := e.buildService()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "📥 正在拉取精选应用...")
			apps := svc.GetApps(cmd.Context(), limit)
			printApps(out, apps)
			fmt.Fprintf(out, "✅ 共 %d 个应用\n", len(apps))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "max apps")
	return cmd
}

func newFeaturedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "List the featured apps",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := e.buildService()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "🌟 精选应用")
			printApps(out, svc.GetFeaturedApps(cmd.Context()))
			return nil
		},
	}
}

func newCategoryCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "category <category>",
		Short: "List apps in a category",
		Long:  "List apps in a category. Known categories: " + knownCategories(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := e.buildService()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📂 分类 %s\n", domain.DisplayName(args[0]))
			apps := svc.GetAppsByCategory(cmd.Context(), args[0], limit)
			printApps(out, apps)
			fmt.Fprintf(out, "✅ 共 %d 个应用\n", len(apps))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "max apps")
	return cmd
}

func newSearchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search apps and show recommendations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := e.buildService()
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🔍 搜索: %s\n", query)

			res := svc.SearchApps(cmd.Context(), query)
			printApps(out, res.Apps)
			if len(res.Recommendations) > 0 {
				fmt.Fprintln(out, "\n💡 相关推荐")
				printApps(out, res.Recommendations)
			}
			return nil
		},
	}
}

func newShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <owner/repo>",
		Short: "Show an app with its releases and downloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, name, ok := strings.Cut(args[0], "/")
			if !ok || owner == "" || name == "" {
				return fmt.Errorf("expected owner/repo, got %q", args[0])
			}
			svc, _, err := e.buildService()
			if err != nil {
				return err
			}
			detail := svc.GetAppDetail(cmd.Context(), owner, name)
			if detail == nil {
				return fmt.Errorf("app %s not found", args[0])
			}
			printDetail(cmd.OutOrStdout(), detail)
			return nil
		},
	}
}

func newRateLimitCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Show the GitHub API rate limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := e.buildService()
			if err != nil {
				return err
			}
			return printRateLimit(cmd.Context(), cmd.OutOrStdout(), svc.RateLimit)
		},
	}
}

func printRateLimit(ctx context.Context, out io.Writer, get func(context.Context) (*domain.RateLimit, error)) error {
	rl, err := get(ctx)
	if err != nil {
		return err
	}
	if rl == nil {
		fmt.Fprintln(out, "⚠️ 无法获取速率限制")
		return nil
	}
	fmt.Fprintf(out, "📊 %d/%d 剩余，%s 重置\n", rl.Remaining, rl.Limit, humanize.Time(rl.Reset))
	return nil
}

func knownCategories() string {
	ids := make([]string, len(domain.Categories))
	for i, info := range domain.Categories {
		ids[i] = string(info.ID)
	}
	return strings.Join(ids, ", ")
}

func printApps(out io.Writer, apps []domain.App) {
	if len(apps) == 0 {
		fmt.Fprintln(out, "📭 没有找到应用")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, app := range apps {
		featured := ""
		if app.IsFeatured {
			featured = "🌟"
		}
		fmt.Fprintf(w, "⭐ %s\t%s/%s\t%s\t%s\t%s\n",
			humanize.Comma(int64(app.Stats.Stars)),
			app.Maintainer.Username, app.Name,
			app.Category,
			platforms(app.Platforms),
			featured,
		)
	}
	_ = w.Flush()
}

func platforms(ps []domain.Platform) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

func printDetail(out io.Writer, d *domain.AppDetail) {
	fmt.Fprintf(out, "📦 %s/%s\n", d.Maintainer.Username, d.Name)
	fmt.Fprintf(out, "   %s\n", d.ShortDescription)
	fmt.Fprintf(out, "   分类: %s  平台: %s  协议: %s\n", domain.DisplayName(string(d.Category)), platforms(d.Platforms), d.License)
	fmt.Fprintf(out, "   ⭐ %s  🍴 %s  更新于 %s\n",
		humanize.Comma(int64(d.Stats.Stars)),
		humanize.Comma(int64(d.Stats.Forks)),
		humanize.Time(d.LastUpdated),
	)
	if d.Homepage != "" {
		fmt.Fprintf(out, "   🔗 %s\n", d.Homepage)
	}

	if len(d.Releases) > 0 {
		fmt.Fprintln(out, "\n🏷️  Releases")
		for _, r := range d.Releases {
			pre := ""
			if r.IsPreRelease {
				pre = " (pre-release)"
			}
			fmt.Fprintf(out, "   %s%s  %s\n", r.Version, pre, humanize.Time(r.Date))
		}
	}

	if len(d.Downloads) > 0 {
		fmt.Fprintln(out, "\n⬇️  Downloads")
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, dl := range d.Downloads {
			fmt.Fprintf(w, "   %s\t%s\t%s\t%s\n", dl.Platform, dl.FileName, dl.Size, dl.URL)
		}
		_ = w.Flush()
	}
}

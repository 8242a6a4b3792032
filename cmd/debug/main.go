package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"appforge/internal/adapter/github"
	"appforge/internal/catalog"
	"appforge/internal/config"
	"appforge/pkg/logger"

	gh "github.com/google/go-github/v53/github"
)

func main() {
	topic := flag.String("topic", "", "按 topic 发现项目，而不是读取参数中的 owner/repo")
	minStars := flag.Int("min-stars", 100, "按 topic 发现时的最低 star 数")
	flag.Parse()

	config.LoadDotEnv()
	githubToken := os.Getenv("GITHUB_TOKEN")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gw, err := github.NewGateway(github.Config{Token: githubToken}, logger.New(true), nil)
	if err != nil {
		log.Fatalf("❌ 网关初始化失败: %v", err)
	}
	mapper := catalog.NewMapper()

	fmt.Println("🔍 调试模式：查看分类和平台推断过程")

	if rl, _ := gw.RateLimit(ctx); rl != nil {
		fmt.Printf("📊 速率限制: %d/%d，%s 重置\n", rl.Remaining, rl.Limit, rl.Reset.Format(time.Kitchen))
	}

	// 1. 获取项目
	var repos []*gh.Repository
	if *topic != "" {
		fmt.Printf("📥 正在抓取 topic '%s' 的项目...\n", *topic)
		repos, err = gw.GetReposByTopic(ctx, *topic, *minStars, 10)
	} else {
		names := flag.Args()
		if len(names) == 0 {
			names = []string{"microsoft/vscode", "videolan/vlc", "junegunn/fzf"}
		}
		fmt.Printf("📥 正在抓取 %d 个仓库...\n", len(names))
		repos, err = gw.GetMultipleRepositories(ctx, names)
	}
	if err != nil {
		log.Fatalf("❌ 获取项目失败: %v", err)
	}
	fmt.Printf("✅ 成功获取 %d 个项目\n", len(repos))

	// 2. 逐个打印推断过程
	rules := mapper.Rules()
	for i, repo := range repos {
		app := mapper.Map(repo, "")

		fmt.Printf("\n#%d %s (⭐ %d)\n", i+1, repo.GetFullName(), app.Stats.Stars)
		fmt.Printf("    topics: [%s]\n", strings.Join(repo.Topics, ", "))

		matched := "无命中，使用默认分类"
		for _, t := range repo.Topics {
			if c, ok := rules.Lookup(t); ok {
				matched = fmt.Sprintf("第一个命中 '%s' → %s", t, c)
				break
			}
		}
		fmt.Printf("    分类: %s (%s)\n", app.Category, matched)
		fmt.Printf("    平台: %v\n", app.Platforms)
		fmt.Printf("    协议: %s  精选: %v\n", app.License, app.IsFeatured)
	}
}

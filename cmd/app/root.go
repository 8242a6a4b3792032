package main

import (
	"appforge/internal/adapter/github"
	"appforge/internal/catalog"
	"appforge/internal/config"
	"appforge/internal/curated"
	"appforge/internal/metrics"
	"appforge/internal/service"
	"appforge/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// env 命令之间共享的已加载配置
type env struct {
	v   *viper.Viper
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	e := &env{v: viper.New()}

	root := &cobra.Command{
		Use:           "appforge",
		Short:         "Open-source app catalog backed by the GitHub API",
		Long:          "AppForge lists open-source applications by reading repository metadata, READMEs and releases from GitHub.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file (default ./appforge.yaml)")
	root.PersistentFlags().Bool("dev", false, "development logging")
	root.PersistentFlags().String("token", "", "GitHub token (default $GITHUB_TOKEN)")

	root.AddCommand(
		newServeCmd(e),
		newAppsCmd(e),
		newFeaturedCmd(e),
		newCategoryCmd(e),
		newSearchCmd(e),
		newShowCmd(e),
		newRateLimitCmd(e),
	)
	return root
}

func (e *env) load(cmd *cobra.Command) error {
	config.LoadDotEnv()

	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Setup(e.v, cfgFile); err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("dev"); f != nil && f.Changed {
		_ = e.v.BindPFlag("server.dev", f)
	}
	if f := cmd.Flags().Lookup("token"); f != nil && f.Changed {
		_ = e.v.BindPFlag("github.token", f)
	}
	if f := cmd.Flags().Lookup("port"); f != nil {
		_ = e.v.BindPFlag("server.port", f)
	}
	if f := cmd.Flags().Lookup("concurrency"); f != nil {
		_ = e.v.BindPFlag("catalog.concurrency", f)
	}

	cfg, err := config.Load(e.v)
	if err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// newGateway 按配置创建 GitHub 网关
func newGateway(cfg config.Config, l *zap.Logger, rec metrics.Recorder) (*github.Gateway, error) {
	return github.NewGateway(github.Config{
		Token:     cfg.GitHub.Token,
		BaseURL:   cfg.GitHub.BaseURL,
		Timeout:   cfg.GitHub.Timeout,
		Retries:   cfg.GitHub.Retries,
		CacheSize: cfg.Cache.Size,
		RepoTTL:   cfg.Cache.RepoTTL,
		SearchTTL: cfg.Cache.SearchTTL,

		RetryDelay:      cfg.GitHub.RetryDelay,
		RetryMaxDelay:   cfg.GitHub.RetryMaxDelay,
		RetryMultiplier: cfg.GitHub.RetryMultiplier,
	}, l, rec)
}

// newCatalogService 组装目录服务
func newCatalogService(cfg config.Config, gw *github.Gateway, l *zap.Logger, rec metrics.Recorder) (*service.CatalogService, error) {
	list, err := curated.Load(cfg.Catalog.CuratedFile)
	if err != nil {
		return nil, err
	}
	mapper := catalog.NewMapper(
		catalog.WithFeaturedTag(cfg.Catalog.FeaturedTag),
		catalog.WithVerified(cfg.Catalog.Verified...),
	)
	return service.NewCatalogService(gw,
		service.WithMapper(mapper),
		service.WithCurated(list),
		service.WithLogger(l),
		service.WithRecorder(rec),
		service.WithConcurrency(cfg.Catalog.Concurrency),
	), nil
}

func newRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func newRecorder(reg *prometheus.Registry) metrics.Recorder {
	return metrics.NewPrometheusRecorder(reg)
}

func newLogger(cfg config.Config) *zap.Logger {
	return logger.New(cfg.Server.Dev)
}

// buildService CLI 子命令使用的完整依赖链，指标不对外暴露
func (e *env) buildService() (*service.CatalogService, *github.Gateway, error) {
	l := newLogger(e.cfg)
	rec := metrics.NoopRecorder{}

	gw, err := newGateway(e.cfg, l, rec)
	if err != nil {
		return nil, nil, err
	}
	svc, err := newCatalogService(e.cfg, gw, l, rec)
	if err != nil {
		return nil, nil, err
	}
	return svc, gw, nil
}

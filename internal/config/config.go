package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"appforge/internal/common"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 APPFORGE_SERVER_PORT
const EnvPrefix = "APPFORGE"

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port int  `mapstructure:"port"`
	Dev  bool `mapstructure:"dev"`
}

// GitHubConfig 上游 API 配置
type GitHubConfig struct {
	Token   string        `mapstructure:"token"`
	BaseURL string        `mapstructure:"base_url"`
	Retries int           `mapstructure:"retries"`
	Timeout time.Duration `mapstructure:"timeout"`

	// 退避参数，只在 retries > 0 时生效
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	RetryMaxDelay   time.Duration `mapstructure:"retry_max_delay"`
	RetryMultiplier float64       `mapstructure:"retry_multiplier"`
}

// CacheConfig 响应缓存配置
type CacheConfig struct {
	Size      int           `mapstructure:"size"`
	RepoTTL   time.Duration `mapstructure:"repo_ttl"`
	SearchTTL time.Duration `mapstructure:"search_ttl"`
}

// CatalogConfig 目录查询配置
type CatalogConfig struct {
	Concurrency int      `mapstructure:"concurrency"`
	CuratedFile string   `mapstructure:"curated_file"`
	FeaturedTag string   `mapstructure:"featured_tag"`
	Verified    []string `mapstructure:"verified"`
}

// Config 运行时配置。
// 来源优先级：命令行 flag > APPFORGE_* 环境变量 > appforge.yaml > 默认值
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// LoadDotEnv 加载当前目录的 .env，文件不存在时忽略
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Setup 配置 viper 的配置文件搜索路径和环境变量映射。cfgFile 为空时搜索 ./appforge.yaml
func Setup(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("appforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return common.WrapError(common.ErrCodeConfig, "bind github token", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时使用默认值
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return common.WrapError(common.ErrCodeConfig, "read config file", err)
		}
	}
	return nil
}

// SetDefaults 注册全部默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.dev", false)
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.retries", 0)
	v.SetDefault("github.timeout", 10*time.Second)
	v.SetDefault("github.retry_delay", 500*time.Millisecond)
	v.SetDefault("github.retry_max_delay", 10*time.Second)
	v.SetDefault("github.retry_multiplier", 2.0)
	v.SetDefault("cache.size", 512)
	v.SetDefault("cache.repo_ttl", time.Hour)
	v.SetDefault("cache.search_ttl", 30*time.Minute)
	v.SetDefault("catalog.concurrency", 8)
	v.SetDefault("catalog.curated_file", "")
	v.SetDefault("catalog.featured_tag", "appforge-featured")
	v.SetDefault("catalog.verified", []string{})
}

// Load 应用默认值后解析配置并校验
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, common.WrapError(common.ErrCodeConfig, "decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查取值范围
func (c Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.GitHub.Retries < 0 {
		problems = append(problems, "github.retries must not be negative")
	}
	if c.GitHub.Timeout < 0 {
		problems = append(problems, "github.timeout must not be negative")
	}
	if c.GitHub.RetryDelay < 0 || c.GitHub.RetryMaxDelay < 0 {
		problems = append(problems, "github retry delays must not be negative")
	}
	// 0 表示使用默认倍数
	if c.GitHub.RetryMultiplier != 0 && c.GitHub.RetryMultiplier < 1 {
		problems = append(problems, "github.retry_multiplier must be at least 1")
	}
	if c.Cache.Size <= 0 {
		problems = append(problems, "cache.size must be positive")
	}
	if c.Cache.RepoTTL <= 0 || c.Cache.SearchTTL <= 0 {
		problems = append(problems, "cache ttl must be positive")
	}
	if c.Catalog.Concurrency <= 0 {
		problems = append(problems, "catalog.concurrency must be positive")
	}
	if len(problems) > 0 {
		return common.NewError(common.ErrCodeConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Addr HTTP 监听地址
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

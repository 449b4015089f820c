package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置（可选，driver为空则不落库）
	Feeds    FeedsConfig    `mapstructure:"feeds"`    // 上游数据源配置
	Sync     SyncConfig     `mapstructure:"sync"`     // 同步调度配置
	Playlist PlaylistConfig `mapstructure:"playlist"` // M3U 过滤规则
	Output   OutputConfig   `mapstructure:"output"`   // 输出文件配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口，0 表示不启动HTTP服务
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // 日志级别
	Format     string `mapstructure:"format"`       // text/json
	File       string `mapstructure:"file"`         // 日志文件路径，为空只输出到stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个日志文件最大MB
	MaxBackups int    `mapstructure:"max_backups"`  // 保留旧文件个数
	MaxAgeDays int    `mapstructure:"max_age_days"` // 保留天数
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // postgres/sqlite，为空不启用
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// FeedsConfig 三个上游数据源及请求参数
type FeedsConfig struct {
	ScheduleURL     string            `mapstructure:"schedule_url"`      // 赛程列表地址
	NodeURLTemplate string            `mapstructure:"node_url_template"` // 单场节点地址，%s 替换为 mgdbId
	PlaylistURL     string            `mapstructure:"playlist_url"`      // M3U 地址
	Timeout         time.Duration     `mapstructure:"timeout"`           // 单次请求超时
	RetryCount      int               `mapstructure:"retry_count"`       // 总尝试次数
	RetryBackoff    time.Duration     `mapstructure:"retry_backoff"`     // 重试间隔
	Proxy           string            `mapstructure:"proxy"`             // 代理地址
	Headers         map[string]string `mapstructure:"headers"`           // 节点接口固定请求头
}

// SyncConfig 同步调度配置
type SyncConfig struct {
	MatchDelay    time.Duration `mapstructure:"match_delay"`    // 每场比赛处理后的间隔
	Interval      time.Duration `mapstructure:"interval"`       // 定时同步间隔，0 表示不定时
	RunOnStart    bool          `mapstructure:"run_on_start"`   // 启动时立即同步一次
	TimeTolerance time.Duration `mapstructure:"time_tolerance"` // 赛程与M3U开赛时间允许误差
}

// PlaylistConfig M3U 分组过滤规则
type PlaylistConfig struct {
	GroupPrefix string   `mapstructure:"group_prefix"` // 分组前缀（体育-）
	DaySuffixes []string `mapstructure:"day_suffixes"` // 允许的日期后缀
}

// OutputConfig 输出文件配置
type OutputConfig struct {
	Dir          string `mapstructure:"dir"`            // 输出目录
	FileName     string `mapstructure:"file_name"`      // 正式文件名
	TempFileName string `mapstructure:"temp_file_name"` // 临时文件名
}

// LoadConfig 加载配置文件（<configDir>/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig(configDir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	if configDir == "" {
		configDir = "./config"
	}

	// 2. 读取 config.yaml
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults 与原始脚本保持一致的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 0)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("feeds.timeout", 10*time.Second)
	v.SetDefault("feeds.retry_count", 2)
	v.SetDefault("feeds.retry_backoff", time.Second)
	v.SetDefault("sync.match_delay", 500*time.Millisecond)
	v.SetDefault("sync.interval", time.Duration(0))
	v.SetDefault("sync.run_on_start", true)
	v.SetDefault("sync.time_tolerance", 30*time.Minute)
	v.SetDefault("playlist.group_prefix", "体育-")
	v.SetDefault("playlist.day_suffixes", []string{"昨天", "今天", "明天"})
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.file_name", "sports-data-latest.json")
	v.SetDefault("output.temp_file_name", "sports-data-temp.json")
}

// overrideFromEnv 用环境变量覆盖部署相关配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("MATCHSYNC_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("MATCHSYNC_PROXY"); v != "" {
		cfg.Feeds.Proxy = v
	}
	if v := os.Getenv("MATCHSYNC_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Feeds.ScheduleURL) == "" {
		return fmt.Errorf("feeds.schedule_url 不能为空")
	}
	if !strings.Contains(c.Feeds.NodeURLTemplate, "%s") {
		return fmt.Errorf("feeds.node_url_template 必须包含 %%s 占位符")
	}
	if c.Feeds.RetryCount <= 0 {
		return fmt.Errorf("feeds.retry_count 必须大于0")
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("未支持的数据库驱动: %s", c.Database.Driver)
	}
	return nil
}

// NodeURL 生成单场比赛节点接口地址
func (f *FeedsConfig) NodeURL(mgdbID string) string {
	return fmt.Sprintf(f.NodeURLTemplate, mgdbID)
}

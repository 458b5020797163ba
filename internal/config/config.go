package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8080
}

// MailboxConfig 定义信箱服务的核心业务配置
type MailboxConfig struct {
	Seed []string // 启动时预创建的信箱列表
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，留空只输出到控制台
}

// RateLimitConfig 定义按客户端 IP 的请求速率限制配置
type RateLimitConfig struct {
	Enabled bool    // 是否启用速率限制
	RPS     float64 // 每秒允许的请求数
	Burst   int     // 突发容量
}

// NotifyConfig 定义新消息通知派发配置
type NotifyConfig struct {
	Workers   int // 通知派发工作协程数量
	QueueSize int // 通知队列容量，满后丢弃
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server    ServerConfig    // HTTP 服务器配置
	Mailbox   MailboxConfig   // 信箱服务配置
	CORS      CORSConfig      // 跨域配置
	Log       LogConfig       // 日志配置
	RateLimit RateLimitConfig // 速率限制配置
	Notify    NotifyConfig    // 通知派发配置
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量（最高优先级）
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: AGENTPOST_
// 例如: AGENTPOST_SERVER_PORT, AGENTPOST_MAILBOX_SEED
func Load() (*Config, error) {
	// 尝试加载 .env 文件（静默失败，因为 .env 文件是可选的）
	loadEnvFile()

	viper.SetEnvPrefix("agentpost")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("mailbox.seed", "")
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("ratelimit.enabled", true)
	viper.SetDefault("ratelimit.rps", 50.0)
	viper.SetDefault("ratelimit.burst", 100)
	viper.SetDefault("notify.workers", 4)
	viper.SetDefault("notify.queue_size", 256)

	serverPort := viper.GetInt("server.port")
	if serverPort <= 0 || serverPort > 65535 {
		return nil, fmt.Errorf("invalid server.port: %d", serverPort)
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	rps := viper.GetFloat64("ratelimit.rps")
	if rps <= 0 {
		rps = 50.0
	}
	burst := viper.GetInt("ratelimit.burst")
	if burst <= 0 {
		burst = 100
	}

	workers := viper.GetInt("notify.workers")
	if workers <= 0 {
		workers = 4
	}
	queueSize := viper.GetInt("notify.queue_size")
	if queueSize <= 0 {
		queueSize = 256
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: serverPort,
		},
		Mailbox: MailboxConfig{
			Seed: parseList(viper.GetString("mailbox.seed")),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
		RateLimit: RateLimitConfig{
			Enabled: viper.GetBool("ratelimit.enabled"),
			RPS:     rps,
			Burst:   burst,
		},
		Notify: NotifyConfig{
			Workers:   workers,
			QueueSize: queueSize,
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片
//
// 参数:
//   - value: 逗号分隔的字符串，如 "item1,item2,item3"
//
// 返回值:
//   - []string: 解析后的字符串切片，已去除空白字符
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env（用于从 backend/ 子目录运行的情况）
//
// 注意：
//   - 如果文件不存在，静默失败（.env 是可选的）
//   - 环境变量不会被覆盖（已存在的环境变量优先级更高）
func loadEnvFile() {
	// 尝试当前目录的 .env
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	// 尝试父目录的 .env（从 backend/ 目录运行时）
	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}

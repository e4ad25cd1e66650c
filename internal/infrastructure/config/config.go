package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、环境变量覆盖
// 配置在启动时一次性加载为不可变结构体，注入到各组件
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"dbname"`
	Charset          string        `mapstructure:"charset"`
	ParseTime        bool          `mapstructure:"parse_time"`
	Loc              string        `mapstructure:"loc"`
	ConnTimeout      time.Duration `mapstructure:"conn_timeout"`      // 连接超时（默认5s）
	StatementTimeout time.Duration `mapstructure:"statement_timeout"` // 单条语句超时（默认10s）
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
// 注意：
// 1. loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
// 2. timeout是建连超时，readTimeout/writeTimeout限定单条语句的I/O耗时，
//    语句挂死时驱动报超时错误，按瞬时存储错误处理
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s&timeout=%s&readTimeout=%s&writeTimeout=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc,
		d.ConnTimeout, d.StatementTimeout, d.StatementTimeout)
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DetailTTL    time.Duration `mapstructure:"detail_ttl"` // 图书详情缓存TTL
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RabbitMQConfig 消息队列配置
// 设计说明：
// 入站三元组（queue/exchange/routing_key）必须与生产方部署配置一致，
// 全部走配置，代码不内置多套定义
type RabbitMQConfig struct {
	URL            string        `mapstructure:"url"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"` // 发布确认超时（默认5s）
	Inbound        BindingConfig `mapstructure:"inbound"`         // 库存更新事件入站绑定
	Outbound       BindingConfig `mapstructure:"outbound"`        // 库存请求事件出站绑定
}

// BindingConfig 队列绑定三元组
type BindingConfig struct {
	Queue      string `mapstructure:"queue"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

// RetryConfig 延迟重试配置
// 目标图书不存在时，按Delay延迟重新执行，最多MaxAttempts次
type RetryConfig struct {
	Delay        time.Duration `mapstructure:"delay"`         // 默认20s
	MaxAttempts  int           `mapstructure:"max_attempts"`  // 默认5
	PollInterval time.Duration `mapstructure:"poll_interval"` // 调度器轮询间隔（默认1s）
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // console | json
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 环境变量覆盖（如CATALOG_DATABASE_PASSWORD → database.password）
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 设置默认值
// 重试参数的默认值是对外契约的一部分（20秒延迟、5次预算）
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.conn_timeout", 5*time.Second)
	v.SetDefault("database.statement_timeout", 10*time.Second)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.detail_ttl", 10*time.Minute)

	v.SetDefault("rabbitmq.confirm_timeout", 5*time.Second)
	v.SetDefault("rabbitmq.inbound.queue", "catalog.queue.update-book-stock")
	v.SetDefault("rabbitmq.inbound.exchange", "catalog-service-exchange")
	v.SetDefault("rabbitmq.inbound.routing_key", "catalog-service-routing-key")
	v.SetDefault("rabbitmq.outbound.exchange", "catalog-stock-request-exchange")
	v.SetDefault("rabbitmq.outbound.routing_key", "catalog-stock-request-routing-key")

	v.SetDefault("retry.delay", 20*time.Second)
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.poll_interval", time.Second)
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	if cfg.RabbitMQ.Inbound.Queue == "" || cfg.RabbitMQ.Inbound.Exchange == "" || cfg.RabbitMQ.Inbound.RoutingKey == "" {
		return fmt.Errorf("入站队列绑定配置不完整: %+v", cfg.RabbitMQ.Inbound)
	}

	if cfg.Retry.Delay <= 0 {
		return fmt.Errorf("无效的重试延迟: %v", cfg.Retry.Delay)
	}

	if cfg.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("无效的最大重试次数: %d", cfg.Retry.MaxAttempts)
	}

	return nil
}

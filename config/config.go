package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 对象存储配置
	StorageType            string  `mapstructure:"storage_type"`
	StorageLocalPath       string  `mapstructure:"storage_local_path"`
	StoragePublicURL       string  `mapstructure:"storage_public_url"`
	StorageEndpoint        string  `mapstructure:"storage_endpoint"`
	StorageRegion          string  `mapstructure:"storage_region"`
	StorageBucket          string  `mapstructure:"storage_bucket"`
	StorageAccessKeyID     string  `mapstructure:"storage_access_key_id"`
	StorageSecretAccessKey string  `mapstructure:"storage_secret_access_key"`
	StorageUseSSL          bool    `mapstructure:"storage_use_ssl"`
	StoragePathStyle       bool    `mapstructure:"storage_path_style"`
	StorageWebDAVURL       string  `mapstructure:"storage_webdav_url"`
	StorageWebDAVUsername  string  `mapstructure:"storage_webdav_username"`
	StorageWebDAVPassword  string  `mapstructure:"storage_webdav_password"`
	StorageWebDAVRoot      string  `mapstructure:"storage_webdav_root"`
	StorageDeleteBatchSize int     `mapstructure:"storage_delete_batch_size"`
	StorageDeleteRPS       float64 `mapstructure:"storage_delete_rps"`

	// 缓存提供者配置
	CacheType          string        `mapstructure:"cache_type"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string        `mapstructure:"cache_redis_password"`
	CacheRedisDB       int           `mapstructure:"cache_redis_db"`
	CacheMaxSizeMB     int64         `mapstructure:"cache_max_size_mb"`
	CacheAlbumTTL      time.Duration `mapstructure:"cache_album_ttl"`

	// 生命周期配置
	LifecycleGracePeriod      time.Duration `mapstructure:"lifecycle_grace_period"`
	LifecycleSweepSchedule    string        `mapstructure:"lifecycle_sweep_schedule"`
	LifecycleSweepOnStart     bool          `mapstructure:"lifecycle_sweep_on_start"`
	LifecycleMaxSweepDuration time.Duration `mapstructure:"lifecycle_max_sweep_duration"`
	LifecyclePurgeWorkers     int           `mapstructure:"lifecycle_purge_workers"`

	// 相册配置
	AlbumDefaultExpiry time.Duration `mapstructure:"album_default_expiry"`
	AlbumMaxExpiry     time.Duration `mapstructure:"album_max_expiry"`
	AlbumMaxActive     int           `mapstructure:"album_max_active"`

	// 认证
	JWTSecret string `mapstructure:"jwt_secret"`

	// 日志配置
	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
	LogCompress   bool   `mapstructure:"log_compress"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		cfg, err := Load(viper.GetString("config_file_path"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
		globalConfig = *cfg
	})
}

func Get() *Config {
	return &globalConfig
}

// Load 从 .env 文件与环境变量读取配置，path 为空时使用 ./.env
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: config file not found, using defaults and environment variables")
	}

	v.AutomaticEnv()
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查生命周期相关的取值
func (c *Config) Validate() error {
	if c.LifecycleGracePeriod < 0 {
		return fmt.Errorf("lifecycle_grace_period must not be negative, got %s", c.LifecycleGracePeriod)
	}
	if c.StorageDeleteBatchSize <= 0 {
		return fmt.Errorf("storage_delete_batch_size must be positive, got %d", c.StorageDeleteBatchSize)
	}
	if c.StorageDeleteRPS < 0 {
		return fmt.Errorf("storage_delete_rps must not be negative, got %v", c.StorageDeleteRPS)
	}
	if c.LifecyclePurgeWorkers < 0 {
		c.LifecyclePurgeWorkers = runtime.GOMAXPROCS(0)
	}
	if c.LifecyclePurgeWorkers == 0 {
		c.LifecyclePurgeWorkers = 1
	}
	if c.AlbumDefaultExpiry <= 0 {
		return fmt.Errorf("album_default_expiry must be positive, got %s", c.AlbumDefaultExpiry)
	}
	if c.AlbumMaxExpiry < c.AlbumDefaultExpiry {
		return fmt.Errorf("album_max_expiry (%s) is shorter than album_default_expiry (%s)", c.AlbumMaxExpiry, c.AlbumDefaultExpiry)
	}
	if c.AlbumMaxActive < 0 {
		return fmt.Errorf("album_max_active must not be negative, got %d", c.AlbumMaxActive)
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// 服务器配置默认值
	v.SetDefault("server_host", "127.0.0.1")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_domain", "")
	v.SetDefault("server_read_timeout", "15s")
	v.SetDefault("server_write_timeout", "30s")
	v.SetDefault("server_idle_timeout", "120s")
	v.SetDefault("cors_allowed_origins", []string{"*"})

	// 数据库配置默认值
	v.SetDefault("db_type", "sqlite")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_username", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "picshare")
	v.SetDefault("db_file_path", "./data/picshare.db")
	v.SetDefault("db_max_open_conns", 100)
	v.SetDefault("db_max_idle_conns", 25)
	v.SetDefault("db_conn_max_lifetime", 3600)

	// 对象存储默认值
	v.SetDefault("storage_type", "local")
	v.SetDefault("storage_local_path", "./data/photos")
	v.SetDefault("storage_public_url", "")
	v.SetDefault("storage_endpoint", "")
	v.SetDefault("storage_region", "")
	v.SetDefault("storage_bucket", "")
	v.SetDefault("storage_access_key_id", "")
	v.SetDefault("storage_secret_access_key", "")
	v.SetDefault("storage_use_ssl", true)
	v.SetDefault("storage_path_style", false)
	v.SetDefault("storage_webdav_url", "")
	v.SetDefault("storage_webdav_username", "")
	v.SetDefault("storage_webdav_password", "")
	v.SetDefault("storage_webdav_root", "/")
	v.SetDefault("storage_delete_batch_size", 1000)
	v.SetDefault("storage_delete_rps", 0)

	// 缓存提供者配置默认值
	v.SetDefault("cache_type", "memory")
	v.SetDefault("cache_redis_addr", "localhost:6379")
	v.SetDefault("cache_redis_password", "")
	v.SetDefault("cache_redis_db", 0)
	v.SetDefault("cache_max_size_mb", 64)
	v.SetDefault("cache_album_ttl", "10m")

	// 生命周期默认值：过期后保留 7 天再清理，每小时一次
	v.SetDefault("lifecycle_grace_period", "168h")
	v.SetDefault("lifecycle_sweep_schedule", "@every 1h")
	v.SetDefault("lifecycle_sweep_on_start", true)
	v.SetDefault("lifecycle_max_sweep_duration", "50m")
	v.SetDefault("lifecycle_purge_workers", 1)

	v.SetDefault("album_default_expiry", "168h")
	v.SetDefault("album_max_expiry", "720h")
	v.SetDefault("album_max_active", 10)

	v.SetDefault("jwt_secret", "")

	// 日志
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age_days", 30)
	v.SetDefault("log_compress", true)
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL 返回基础 URL，用于生成分享链接
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return strings.TrimRight(c.ServerDomain, "/")
	}
	host := c.ServerHost
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

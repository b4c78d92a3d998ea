package config

import (
	"errors"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	Shop     ShopConfig     `mapstructure:"shop"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	DBName        string `mapstructure:"dbname"`
	Port          string `mapstructure:"port"`
	SSLMode       string `mapstructure:"sslmode"`
	TimeZone      string `mapstructure:"timezone"`
	LockTimeoutMs int    `mapstructure:"lock_timeout_ms"` // 事务内等待行锁的最长时间
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

// ShopConfig 下单相关配置
type ShopConfig struct {
	StandardShippingFee   float64 `mapstructure:"standard_shipping_fee"`
	ExpressShippingFee    float64 `mapstructure:"express_shipping_fee"`
	FreeShippingThreshold float64 `mapstructure:"free_shipping_threshold"` // 0 表示不包邮
	CheckoutLockSeconds   int     `mapstructure:"checkout_lock_seconds"`
}

// ShippingRates 转换为 decimal，避免在业务代码里做浮点运算
func (s ShopConfig) ShippingRates() (standard, express, freeThreshold decimal.Decimal) {
	return decimal.NewFromFloat(s.StandardShippingFee),
		decimal.NewFromFloat(s.ExpressShippingFee),
		decimal.NewFromFloat(s.FreeShippingThreshold)
}

type WorkerConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
	MaxRetry  int `mapstructure:"max_retry"`
}

// AdminConfig 启动时初始化的默认管理员
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	// JWT 配置验证
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	// 数据库配置验证
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	// Redis 配置验证
	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.Shop.StandardShippingFee < 0 || c.Shop.ExpressShippingFee < 0 || c.Shop.FreeShippingThreshold < 0 {
		return errors.New("shipping fees must not be negative")
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.allow_origins", []string{"http://localhost:3000"})
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.timezone", "UTC")
	viper.SetDefault("database.lock_timeout_ms", 3000)
	viper.SetDefault("jwt.expire", 24)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("shop.standard_shipping_fee", 29.90)
	viper.SetDefault("shop.express_shipping_fee", 59.90)
	viper.SetDefault("shop.free_shipping_threshold", 500)
	viper.SetDefault("shop.checkout_lock_seconds", 10)
	viper.SetDefault("worker.workers", 4)
	viper.SetDefault("worker.queue_size", 1000)
	viper.SetDefault("worker.max_retry", 3)
	viper.SetDefault("admin.username", "admin")
	viper.SetDefault("admin.email", "admin@example.com")
}

// LoadConfig 加载配置
func LoadConfig() {
	// 获取环境变量，默认为dev
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 根据环境选择配置文件
	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// 绑定环境变量
	viper.AutomaticEnv()

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// 手动覆盖，以防 viper 无法正确解析复杂结构或环境变量
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		GlobalConfig.JWT.Secret = jwtSecret
	}
	if adminPassword := os.Getenv("ADMIN_PASSWORD"); adminPassword != "" {
		GlobalConfig.Admin.Password = adminPassword
	}

	// 验证配置
	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}

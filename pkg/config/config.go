package config

import (
	"SingletonLab/pkg/lazy"
	"SingletonLab/pkg/logger"
	"SingletonLab/pkg/util"
	"log"
	"os"
	"time"
)

// Config 进程配置
type Config struct {
	Mode             string `env:"MODE"`
	Log              logger.LogConfig
	MetricsEnabled   bool          `env:"METRICS_ENABLED"`
	MetricsNamespace string        `env:"METRICS_NAMESPACE"`
	TeardownTimeout  time.Duration `env:"TEARDOWN_TIMEOUT"`
	DemoWorkers      int           `env:"DEMO_WORKERS"`
}

// 配置本身也是一个延迟构造的单例，第一次 Get 时读取环境
var holder = lazy.NewStatic("config", load)

// Get 返回进程配置，首次调用时加载
func Get() *Config {
	return holder.MustGet()
}

// Load 立即加载配置
func Load() error {
	_, err := holder.Get()
	return err
}

func load() (*Config, error) {
	// 1. 根据环境加载 .env 文件
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development" // 默认使用开发环境
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	// 2. 从环境变量构造配置
	return FromEnv(), nil
}

// FromEnv 只读取当前环境变量，不加载文件
func FromEnv() *Config {
	workers := int(util.GetIntEnv("DEMO_WORKERS"))
	if workers <= 0 {
		workers = 8
	}
	return &Config{
		Mode: util.GetEnvOr("MODE", "development"),
		Log: logger.LogConfig{
			Level:      util.GetEnvOr("LOG_LEVEL", "info"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		MetricsEnabled:   util.GetBoolEnv("METRICS_ENABLED"),
		MetricsNamespace: util.GetEnvOr("METRICS_NAMESPACE", "singletonlab"),
		TeardownTimeout:  util.GetDurationEnv("TEARDOWN_TIMEOUT", 5*time.Second),
		DemoWorkers:      workers,
	}
}

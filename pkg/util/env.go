package util

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv 加载 .env 以及 .env.<env>，已存在的环境变量不会被覆盖
func LoadEnv(env string) error {
	files := []string{fmt.Sprintf(".env.%s", env), ".env"}
	var found []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			found = append(found, f)
		}
	}
	if len(found) == 0 {
		return fmt.Errorf("no env file found for %q", env)
	}
	return godotenv.Load(found...)
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvOr 变量为空时返回默认值
func GetEnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetIntEnv(key string) int64 {
	return cast.ToInt64(os.Getenv(key))
}

func GetBoolEnv(key string) bool {
	return cast.ToBool(os.Getenv(key))
}

// GetDurationEnv 支持 "5s" 形式，也支持纯数字（按纳秒）
func GetDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return def
	}
	return d
}

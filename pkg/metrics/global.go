package metrics

import (
	"sync"
)

var (
	globalCollector *Collector
	mu              sync.RWMutex
)

// SetGlobal 设置全局指标收集器，nil 表示关闭上报
func SetGlobal(c *Collector) {
	mu.Lock()
	defer mu.Unlock()
	globalCollector = c
}

// Global 获取全局指标收集器，未设置时返回 nil（方法对 nil 安全）
func Global() *Collector {
	mu.RLock()
	defer mu.RUnlock()
	return globalCollector
}

// IsGlobalEnabled 检查全局收集器是否已设置
func IsGlobalEnabled() bool {
	return Global() != nil
}

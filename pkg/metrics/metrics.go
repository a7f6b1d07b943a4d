package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Holder kinds used as the "kind" label.
const (
	KindDoubleChecked = "double_checked"
	KindStatic        = "static"
	KindBase          = "base"
	KindEager         = "eager"
	KindGlobal        = "global"
)

// Collector 单例生命周期指标
type Collector struct {
	registry *prometheus.Registry

	constructionsTotal   *prometheus.CounterVec
	constructFailsTotal  *prometheus.CounterVec
	constructionDuration *prometheus.HistogramVec
	fastPathTotal        *prometheus.CounterVec
	destructionsTotal    *prometheus.CounterVec
	liveInstances        *prometheus.GaugeVec
	violationsTotal      *prometheus.CounterVec
}

// NewCollector 创建指标收集器，每个收集器使用独立的 Registry
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		constructionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "singleton_constructions_total",
				Help:      "Total number of completed singleton constructions",
			},
			[]string{"kind", "name"},
		),

		constructFailsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "singleton_construction_failures_total",
				Help:      "Total number of failed singleton constructions",
			},
			[]string{"kind", "name"},
		),

		constructionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "singleton_construction_duration_seconds",
				Help:      "Singleton construction duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 10, 7),
			},
			[]string{"kind"},
		),

		fastPathTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "singleton_fast_path_total",
				Help:      "Accessor calls served without taking the construction lock",
			},
			[]string{"kind", "name"},
		),

		destructionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "singleton_destructions_total",
				Help:      "Total number of destroyed singleton instances",
			},
			[]string{"kind", "name"},
		),

		liveInstances: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "singleton_live_instances",
				Help:      "Number of currently live singleton instances",
			},
			[]string{"kind"},
		),

		violationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "singleton_lifecycle_violations_total",
				Help:      "New on an occupied managed global slot or a second base for one type",
			},
			[]string{"name"},
		),
	}
}

// Gatherer 返回只读的 Gatherer，nil 收集器返回空集合
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return prometheus.Gatherers{}
	}
	return c.registry
}

// Constructed 记录一次成功构造
func (c *Collector) Constructed(kind, name string, d time.Duration) {
	if c == nil {
		return
	}
	c.constructionsTotal.WithLabelValues(kind, name).Inc()
	c.constructionDuration.WithLabelValues(kind).Observe(d.Seconds())
	c.liveInstances.WithLabelValues(kind).Inc()
}

// ConstructFailed 记录一次构造失败
func (c *Collector) ConstructFailed(kind, name string) {
	if c == nil {
		return
	}
	c.constructFailsTotal.WithLabelValues(kind, name).Inc()
}

// FastPath 记录一次无锁命中
func (c *Collector) FastPath(kind, name string) {
	if c == nil {
		return
	}
	c.fastPathTotal.WithLabelValues(kind, name).Inc()
}

// Destroyed 记录一次析构
func (c *Collector) Destroyed(kind, name string) {
	if c == nil {
		return
	}
	c.destructionsTotal.WithLabelValues(kind, name).Inc()
	c.liveInstances.WithLabelValues(kind).Dec()
}

// Violation 记录一次生命周期违规
func (c *Collector) Violation(name string) {
	if c == nil {
		return
	}
	c.violationsTotal.WithLabelValues(name).Inc()
}

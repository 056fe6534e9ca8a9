// Package metrics 管理服务的 Prometheus 注册表与 HTTP 请求指标。
package metrics

import (
	"regexp"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics 可暴露到 /metrics 的注册表
type Metrics interface {
	Registry() *prometheus.Registry
}

// Prom 进程级注册表
var Prom = New()

var _ Metrics = (*Prometheus)(nil)

// Prometheus 独立注册表，内置采集器最多注册一次
type Prometheus struct {
	registry  *prometheus.Registry
	runtime   sync.Once
	buildInfo sync.Once
	process   sync.Once
}

func New() *Prometheus {
	return &Prometheus{registry: prometheus.NewRegistry()}
}

// WithGoCollectorRuntimeMetrics 注册 Go 运行时采集器
func (p *Prometheus) WithGoCollectorRuntimeMetrics() {
	p.runtime.Do(func() {
		p.registry.MustRegister(collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/.*")}),
		))
	})
}

func (p *Prometheus) WithBuildInfoCollector() {
	p.buildInfo.Do(func() {
		p.registry.MustRegister(collectors.NewBuildInfoCollector())
	})
}

func (p *Prometheus) WithProcessCollector() {
	p.process.Do(func() {
		p.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

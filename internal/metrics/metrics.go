package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 操作结果标签
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Collector 业务操作指标
type Collector struct {
	gatherer   prometheus.Gatherer
	cartOps    *prometheus.CounterVec
	campaignOp *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	rejected   []error
}

// New 在给定注册器上注册业务指标，reg 为空时返回空操作收集器
// rejected 中的错误（及其包装）记为 rejected，其余错误记为 error
func New(reg *prometheus.Registry, rejected ...error) *Collector {
	if reg == nil {
		return &Collector{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dfn_cart_operations_total",
		Help: "Cart operations by operation and result.",
	}, []string{"op", "result"})
	campaignOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dfn_campaign_operations_total",
		Help: "Group buying campaign operations by operation and result.",
	}, []string{"op", "result"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dfn_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status class.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
	reg.MustRegister(cartOps, campaignOps, httpDur)
	return &Collector{
		gatherer:   reg,
		cartOps:    cartOps,
		campaignOp: campaignOps,
		httpDur:    httpDur,
		rejected:   rejected,
	}
}

// CartOp 记录购物车操作
func (c *Collector) CartOp(op string, err error) {
	if c == nil || c.cartOps == nil {
		return
	}
	c.cartOps.WithLabelValues(normalizeLabel(op), c.resultOf(err)).Inc()
}

// CampaignOp 记录团购操作
func (c *Collector) CampaignOp(op string, err error) {
	if c == nil || c.campaignOp == nil {
		return
	}
	c.campaignOp.WithLabelValues(normalizeLabel(op), c.resultOf(err)).Inc()
}

// ObserveHTTP 记录请求耗时
func (c *Collector) ObserveHTTP(route string, status int, duration time.Duration) {
	if c == nil || c.httpDur == nil {
		return
	}
	c.httpDur.WithLabelValues(normalizeLabel(route), statusClass(status)).Observe(duration.Seconds())
}

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) resultOf(err error) string {
	if err == nil {
		return ResultOK
	}
	for _, target := range c.rejected {
		if errors.Is(err, target) {
			return ResultRejected
		}
	}
	return ResultError
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

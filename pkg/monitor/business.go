package monitor

import (
	"time"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	TxSubmittedTotal     *prometheus.CounterVec
	TxFailedTotal        *prometheus.CounterVec
	NodeCallDuration     *prometheus.HistogramVec
	NodeUp               prometheus.Gauge
	ProposalsReadTotal   prometheus.Counter
	EventPublishFailures *prometheus.CounterVec
}

// Global Metrics Instance. Nil until InitBusinessMetrics; the helpers below
// are no-ops in that case so packages can run without metrics in tests.
var Business *BusinessMetrics

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		TxSubmittedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_tx_submitted_total",
			Help: "Transactions accepted by the node, by contract method",
		}, []string{"method"}),
		TxFailedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_tx_failed_total",
			Help: "Write requests that did not reach the mempool, by method and error kind",
		}, []string{"method", "kind"}),
		NodeCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_node_call_duration_seconds",
			Help:    "Latency of JSON-RPC calls to the node",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "kind"}),
		NodeUp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "relay_node_up",
			Help: "1 if the last node probe succeeded",
		}),
		ProposalsReadTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "relay_proposals_read_total",
			Help: "Proposal records decoded from the contract",
		}),
		EventPublishFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_event_publish_failures_total",
			Help: "Submitted-transaction events that could not be published",
		}, []string{"publisher"}),
	}
}

func ObserveNodeCall(op string, start time.Time, err error) {
	if Business == nil {
		return
	}
	Business.NodeCallDuration.WithLabelValues(op, errno.Kind(err)).Observe(time.Since(start).Seconds())
}

func TxSubmitted(method string) {
	if Business == nil {
		return
	}
	Business.TxSubmittedTotal.WithLabelValues(method).Inc()
}

func TxFailed(method string, err error) {
	if Business == nil {
		return
	}
	Business.TxFailedTotal.WithLabelValues(method, errno.Kind(err)).Inc()
}

func ProposalsRead(n int) {
	if Business == nil {
		return
	}
	Business.ProposalsReadTotal.Add(float64(n))
}

func SetNodeUp(up bool) {
	if Business == nil {
		return
	}
	if up {
		Business.NodeUp.Set(1)
	} else {
		Business.NodeUp.Set(0)
	}
}

func EventPublishFailed(publisher string) {
	if Business == nil {
		return
	}
	Business.EventPublishFailures.WithLabelValues(publisher).Inc()
}

package ws

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 网关连接监控接口
type Metrics interface {
	IncrementConnections()
	IncrementDisconnects(code int)
	IncrementReconnects(resume bool)
	IncrementPackets(op Opcode, eventType string)
	IncrementDecodeErrors()
	IncrementMissedHeartbeats()
	ObserveHeartbeatLatency(d time.Duration)
	SetConnected(connected bool)
}

// NoopMetrics 空实现（默认）
type NoopMetrics struct{}

func (NoopMetrics) IncrementConnections()                  {}
func (NoopMetrics) IncrementDisconnects(int)               {}
func (NoopMetrics) IncrementReconnects(bool)               {}
func (NoopMetrics) IncrementPackets(Opcode, string)        {}
func (NoopMetrics) IncrementDecodeErrors()                 {}
func (NoopMetrics) IncrementMissedHeartbeats()             {}
func (NoopMetrics) ObserveHeartbeatLatency(time.Duration) {}
func (NoopMetrics) SetConnected(bool)                      {}

// PrometheusMetrics Prometheus 实现
type PrometheusMetrics struct {
	connections      prometheus.Counter
	disconnects      *prometheus.CounterVec
	reconnects       *prometheus.CounterVec
	packets          *prometheus.CounterVec
	decodeErrors     prometheus.Counter
	missedHeartbeats prometheus.Counter
	latency          prometheus.Histogram
	connected        prometheus.Gauge
}

// NewPrometheusMetrics 创建并注册指标，reg 为 nil 时使用默认注册器
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	const subsystem = "gateway"
	m := &PrometheusMetrics{
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "connections_total", Help: "Successful gateway handshakes.",
		}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "disconnects_total", Help: "Gateway disconnects by close code.",
		}, []string{"code"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "reconnects_total", Help: "Reconnect attempts by mode.",
		}, []string{"mode"}),
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "packets_total", Help: "Received gateway packets.",
		}, []string{"op", "event"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "decode_errors_total", Help: "Frames that could not be decoded.",
		}),
		missedHeartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "missed_heartbeats_total", Help: "Heartbeats without acknowledgement.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "heartbeat_latency_seconds", Help: "Ping to pong round trip.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "connected", Help: "1 when the session has been welcomed.",
		}),
	}
	reg.MustRegister(m.connections, m.disconnects, m.reconnects, m.packets,
		m.decodeErrors, m.missedHeartbeats, m.latency, m.connected)
	return m
}

func (m *PrometheusMetrics) IncrementConnections() { m.connections.Inc() }

func (m *PrometheusMetrics) IncrementDisconnects(code int) {
	m.disconnects.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *PrometheusMetrics) IncrementReconnects(resume bool) {
	mode := "fresh"
	if resume {
		mode = "resume"
	}
	m.reconnects.WithLabelValues(mode).Inc()
}

func (m *PrometheusMetrics) IncrementPackets(op Opcode, eventType string) {
	m.packets.WithLabelValues(op.String(), eventType).Inc()
}

func (m *PrometheusMetrics) IncrementDecodeErrors()     { m.decodeErrors.Inc() }
func (m *PrometheusMetrics) IncrementMissedHeartbeats() { m.missedHeartbeats.Inc() }

func (m *PrometheusMetrics) ObserveHeartbeatLatency(d time.Duration) {
	m.latency.Observe(d.Seconds())
}

func (m *PrometheusMetrics) SetConnected(connected bool) {
	if connected {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics records payment flow outcomes for Prometheus.
type PaymentMetrics struct {
	initiated       prometheus.Counter
	approved        prometheus.Counter
	declined        prometheus.Counter
	errored         prometheus.Counter
	gatewayDuration *prometheus.HistogramVec
}

// NewPaymentMetrics registers the payment metrics on the given registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	factory := promauto.With(reg)
	return &PaymentMetrics{
		initiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Total number of payment initiations sent to the gateway",
		}),
		approved: factory.NewCounter(prometheus.CounterOpts{
			Name: "payments_approved_total",
			Help: "Total number of payments approved by the gateway",
		}),
		declined: factory.NewCounter(prometheus.CounterOpts{
			Name: "payments_declined_total",
			Help: "Total number of payments declined by the gateway",
		}),
		errored: factory.NewCounter(prometheus.CounterOpts{
			Name: "payments_errored_total",
			Help: "Total number of payments that failed with transport or protocol errors",
		}),
		gatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of outbound gateway calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
	}
}

func (m *PaymentMetrics) Initiated() { m.initiated.Inc() }
func (m *PaymentMetrics) Approved()  { m.approved.Inc() }
func (m *PaymentMetrics) Declined()  { m.declined.Inc() }
func (m *PaymentMetrics) Errored()   { m.errored.Inc() }

// ObserveGatewayCall records the duration of one outbound gateway call.
// Phase is one of "initiate", "callback", "query".
func (m *PaymentMetrics) ObserveGatewayCall(phase string, start time.Time) {
	m.gatewayDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

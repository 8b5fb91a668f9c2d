package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// GatewayRequestsTotal counts MerchantRequest calls by operation and outcome.
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dragonpay",
			Name:      "gateway_requests_total",
			Help:      "Total Dragonpay merchant requests by operation and result",
		},
		[]string{"op", "result"},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dragonpay",
			Name:      "gateway_request_duration_seconds",
			Help:      "Latency of Dragonpay merchant requests",
			Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"op"},
	)

	PostbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dragonpay",
			Name:      "postbacks_total",
			Help:      "Postbacks received by decoded status and digest validity",
		},
		[]string{"status", "valid"},
	)
)

func init() {
	prometheus.MustRegister(GatewayRequestsTotal, GatewayRequestDuration, PostbacksTotal)
}

// ObserveGatewayRequest records one merchant request.
func ObserveGatewayRequest(op, result string, seconds float64) {
	GatewayRequestsTotal.WithLabelValues(op, result).Inc()
	GatewayRequestDuration.WithLabelValues(op).Observe(seconds)
}

// IncPostback records one received postback.
func IncPostback(status string, valid bool) {
	v := "false"
	if valid {
		v = "true"
	}
	if status == "" {
		status = "unrecognized"
	}
	PostbacksTotal.WithLabelValues(status, v).Inc()
}

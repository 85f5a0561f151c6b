package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

var (
	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads persisted",
		},
		[]string{"kind"},
	)

	leadDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_deliveries_total",
			Help: "Outbound delivery attempts per channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	pendingWebhook = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leads_pending_webhook",
			Help: "Leads whose webhook has not been delivered yet",
		},
	)

	pendingConversion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leads_pending_conversion",
			Help: "Leads not yet reported to any ad platform",
		},
	)
)

func RecordLeadCreated(kind string) {
	leadsCreated.WithLabelValues(kind).Inc()
}

func RecordDelivery(channel string, success, skipped bool) {
	outcome := OutcomeFailure
	switch {
	case skipped:
		outcome = OutcomeSkipped
	case success:
		outcome = OutcomeSuccess
	}
	leadDeliveries.WithLabelValues(channel, outcome).Inc()
}

func SetPendingDeliveries(webhook, conversion int) {
	pendingWebhook.Set(float64(webhook))
	pendingConversion.Set(float64(conversion))
}

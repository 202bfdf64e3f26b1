package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garments_orders_created_total",
		Help: "Total number of orders successfully placed.",
	})

	PaymentsReconciledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garments_payments_reconciled_total",
		Help: "Total number of checkout sessions reconciled as paid.",
	})

	TrackingEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garments_tracking_events_total",
		Help: "Total number of tracking events appended.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garments_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
